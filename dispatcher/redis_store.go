package dispatcher

import (
	"github.com/eko/gocache/lib/v4/store"
	rediscluster_store "github.com/eko/gocache/store/rediscluster/v4"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisResultStore returns a result store backed by Redis, for deployments
// where multiple instances share job results. The caller owns the client.
//
// Pass the returned store to New. Instances sharing results must use the same
// cache key prefix in their DispatcherConfig.
func NewRedisResultStore(client redis.UniversalClient) store.StoreInterface {
	return rediscluster_store.NewRedisCluster(client)
}
