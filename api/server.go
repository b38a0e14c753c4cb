// Package api exposes the dispatcher over a small REST surface: deferred and
// synchronous job submission, result polling, liveness and metrics.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	common "github.com/peteraglen/task-dispatch/common"
	"github.com/peteraglen/task-dispatch/config"
	"github.com/peteraglen/task-dispatch/dispatcher"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ClientIDHeader identifies the client for rate limiting purposes.
// Requests without it are keyed by remote address.
const ClientIDHeader = "X-Client-Id"

// DedupKeyHeader optionally sets the job dedup key on submission.
const DedupKeyHeader = "X-Dedup-Key"

// MaxJobInputBytes bounds the accepted size of a job input body.
const MaxJobInputBytes = 1 << 20

type Server struct {
	dispatcher *dispatcher.Dispatcher

	limitersByClient map[string]*rate.Limiter
	limitersLock     *sync.Mutex

	cfg     *config.APIConfig
	metrics common.Metrics
	logger  common.Logger
}

func New(d *dispatcher.Dispatcher, logger common.Logger, metrics common.Metrics, cfg *config.APIConfig) *Server {
	if logger == nil {
		logger = &common.NoopLogger{}
	}

	if metrics == nil {
		metrics = &common.NoopMetrics{}
	}

	if cfg == nil {
		cfg = config.NewDefaultAPIConfig()
	}

	return &Server{
		dispatcher:       d,
		limitersByClient: make(map[string]*rate.Limiter),
		limitersLock:     &sync.Mutex{},
		cfg:              cfg,
		metrics:          metrics,
		logger:           logger,
	}
}

// Run starts the server and handles incoming requests. This method blocks
// until the context is cancelled, or a server error occurs.
func (s *Server) Run(ctx context.Context) error {
	if s.dispatcher == nil {
		return fmt.Errorf("dispatcher cannot be nil")
	}

	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	router := s.newRouter()

	readHeaderTimeout := 2 * time.Second
	requestTimeout := s.getRequestTimeout()
	timeoutWiggleRoom := time.Second

	var handler http.Handler

	if loggingHandler := s.logger.HttpLoggingHandler(); loggingHandler != nil {
		handler = handlers.LoggingHandler(loggingHandler, router)
	} else {
		handler = router
	}

	timeoutHandler := http.TimeoutHandler(handler, requestTimeout, "Handler timeout")
	listenAddr := fmt.Sprintf(":%s", s.cfg.RestPort)

	srv := &http.Server{
		Handler:           timeoutHandler,
		Addr:              listenAddr,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readHeaderTimeout + requestTimeout + timeoutWiggleRoom,
		WriteTimeout:      requestTimeout + timeoutWiggleRoom,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.
		WithField("write_timeout", fmt.Sprintf("%v", srv.WriteTimeout)).
		WithField("read_timeout", fmt.Sprintf("%v", srv.ReadTimeout)).
		WithField("request_timeout", fmt.Sprintf("%v", requestTimeout)).
		Infof("API available on port %s", s.cfg.RestPort)

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return srv.ListenAndServe()
	})

	errg.Go(func() error {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			s.logger.Errorf("Failed to close http server: %s", err)
		}
		return nil
	})

	if err := errg.Wait(); err != nil {
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}

	return nil
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter()

	// Job submission. The plain form returns 202 immediately; the sync form
	// waits for the result within the configured wait time.
	router.HandleFunc("/jobs/{jobType}", s.submitJob).Methods("POST")
	router.HandleFunc("/jobs/{jobType}/sync", s.submitJobSync).Methods("POST")

	// Result polling
	router.HandleFunc("/jobs/{jobId}", s.jobResult).Methods("GET")

	// Registered job types
	router.HandleFunc("/job-types", s.jobTypes).Methods("GET")

	// Ping
	router.HandleFunc("/ping", s.ping).Methods("GET")

	// Metrics, when the implementation can serve them
	if mh, ok := s.metrics.(interface{ HTTPHandler() http.Handler }); ok {
		router.Handle("/metrics", mh.HTTPHandler()).Methods("GET")
	}

	return router
}

func (s *Server) writeErrorResponse(clientErr error, statusCode int, resp http.ResponseWriter, req *http.Request, started time.Time) {
	errText := clientErr.Error()

	if len(errText) > 1 {
		errText = strings.ToUpper(string(errText[0])) + errText[1:]
	}

	if statusCode < 500 {
		s.logger.Infof("Request failed: %s", errText)
	} else {
		s.logger.Errorf("Request failed: %s", errText)
	}

	resp.Header().Add("Content-Type", "text/plain")
	resp.WriteHeader(statusCode)

	if _, err := resp.Write([]byte(errText)); err != nil {
		s.logger.Errorf("Failed to write error response: %s", err)
	}

	s.metrics.AddHTTPRequestMetric(req.URL.Path, req.Method, statusCode, time.Since(started))
}

func (s *Server) waitForRateLimit(ctx context.Context, clientKey string) error {
	limiter := s.getRateLimiter(clientKey)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RateLimitPerClient.MaxRequestWaitTime)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded for client %s", clientKey)
	}

	return nil
}

func (s *Server) getRateLimiter(clientKey string) *rate.Limiter {
	s.limitersLock.Lock()
	defer s.limitersLock.Unlock()

	limiter, ok := s.limitersByClient[clientKey]

	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimitPerClient.RequestsPerSecond), s.cfg.RateLimitPerClient.AllowedBurst)
		s.limitersByClient[clientKey] = limiter
	}

	return limiter
}

func (s *Server) getRequestTimeout() time.Duration {
	return s.cfg.SyncWaitTime + s.cfg.RateLimitPerClient.MaxRequestWaitTime + time.Second
}

func clientKey(req *http.Request) string {
	if client := strings.TrimSpace(req.Header.Get(ClientIDHeader)); client != "" {
		return client
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}
