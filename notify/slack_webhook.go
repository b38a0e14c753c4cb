package notify

import (
	"context"
	"fmt"

	common "github.com/peteraglen/task-dispatch/common"
	"github.com/peteraglen/task-dispatch/models"
	"github.com/slack-go/slack"
)

// maxFailureTextLength caps the failure text included in a notification,
// so a huge handler error cannot blow up the webhook payload.
const maxFailureTextLength = 500

// SlackWebhookNotifier posts job failures to a Slack incoming webhook.
type SlackWebhookNotifier struct {
	webhookURL string
	logger     common.Logger
}

func NewSlackWebhookNotifier(webhookURL string, logger common.Logger) *SlackWebhookNotifier {
	if logger == nil {
		logger = &common.NoopLogger{}
	}

	return &SlackWebhookNotifier{
		webhookURL: webhookURL,
		logger:     logger,
	}
}

func (n *SlackWebhookNotifier) NotifyJobFailure(ctx context.Context, job *models.Job, failure string) {
	msg := buildFailureMessage(job, failure)

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		n.logger.WithField("job_id", job.ID).Errorf("Failed to post job failure notification: %s", err)
	}
}

func buildFailureMessage(job *models.Job, failure string) *slack.WebhookMessage {
	if len(failure) > maxFailureTextLength {
		failure = failure[:maxFailureTextLength-3] + "..."
	}

	text := fmt.Sprintf("Job failed\n*Job ID*: `%s`\n*Type*: `%s`\n*Error*: `%s`", job.ID, job.Type, failure)

	return &slack.WebhookMessage{Text: text}
}
