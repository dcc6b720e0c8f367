package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/masterdesk/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRevokeDownload removes an export download link once it expired.
	TaskRevokeDownload = "download:revoke"
)

// RevokeDownloadPayload names the link to remove.
type RevokeDownloadPayload struct {
	Token string `json:"token"`
}

// NewRevokeDownloadTask constructs an Asynq task.
func NewRevokeDownloadTask(token string) (*asynq.Task, error) {
	data, err := json.Marshal(RevokeDownloadPayload{Token: token})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRevokeDownload, data, asynq.MaxRetry(3)), nil
}

// DownloadRevoker removes download links.
type DownloadRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// RevokeDownloadJob processes TaskRevokeDownload tasks.
type RevokeDownloadJob struct {
	revoker DownloadRevoker
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewRevokeDownloadJob constructs the job handler. metrics may be nil.
func NewRevokeDownloadJob(revoker DownloadRevoker, logger *slog.Logger, metrics *jobmetrics.Metrics) *RevokeDownloadJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevokeDownloadJob{revoker: revoker, logger: logger, metrics: metrics}
}

// Handle removes the link named by the task payload.
func (j *RevokeDownloadJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskRevokeDownload)
	var payload RevokeDownloadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.Token == "" {
		return tracker.End(fmt.Errorf("jobs: bad revoke payload: %w", asynq.SkipRetry))
	}
	if err := j.revoker.Revoke(ctx, payload.Token); err != nil {
		return tracker.End(fmt.Errorf("jobs: revoke download: %w", err))
	}
	j.logger.Debug("download revoked", slog.String("token", payload.Token))
	return tracker.End(nil)
}
