package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uniqvid/internal/config"
	"uniqvid/internal/jobs"
	"uniqvid/internal/logging"
)

const userAgent = "uniqvid/0.1.0"

// NewService builds a notification service backed by ntfy when a topic is
// configured, otherwise a noop implementation.
func NewService(cfg *config.Config, logger *slog.Logger) jobs.Notifier {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyNotifier{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		logger:    logging.NewComponentLogger(logger, "notifications"),
		jobEvents: cfg.Notifications.Jobs,
		errEvents: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyNotifier struct {
	endpoint  string
	client    *http.Client
	logger    *slog.Logger
	jobEvents bool
	errEvents bool
}

func (n *ntfyNotifier) JobQueued(ctx context.Context, job *jobs.Job) {
	if !n.jobEvents {
		return
	}
	n.send(ctx, payload{
		title: "uniqvid - Job Queued",
		message: fmt.Sprintf("Queued %s: %d copies at %s strength",
			displayName(job), job.Copies, job.Strength),
		tags: []string{"uniqvid", "job", "queued"},
	})
}

func (n *ntfyNotifier) JobCompleted(ctx context.Context, job *jobs.Job) {
	if !n.jobEvents {
		return
	}
	n.send(ctx, payload{
		title: "uniqvid - Job Complete",
		message: fmt.Sprintf("%s: %d copies delivered to %s",
			displayName(job), job.Delivered, job.ResultDir),
		tags:     []string{"uniqvid", "job", "completed"},
		priority: "high",
	})
}

func (n *ntfyNotifier) JobFailed(ctx context.Context, job *jobs.Job, cause error) {
	if !n.errEvents {
		return
	}
	reason := "unknown"
	if cause != nil {
		reason = strings.TrimSpace(cause.Error())
	}
	n.send(ctx, payload{
		title: "uniqvid - Job Failed",
		message: fmt.Sprintf("%s failed after %d copies: %s",
			displayName(job), job.Produced, reason),
		tags:     []string{"uniqvid", "job", "error"},
		priority: "high",
	})
}

func displayName(job *jobs.Job) string {
	if name := strings.TrimSpace(job.OriginalName); name != "" {
		return name
	}
	return job.ID
}

func (n *ntfyNotifier) send(ctx context.Context, data payload) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		n.logger.Warn("build ntfy request failed", logging.Error(err))
		return
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("ntfy send failed", logging.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		n.logger.Warn("ntfy rejected notification",
			logging.Int("status", resp.StatusCode),
			logging.String("body", strings.TrimSpace(string(body))))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
}

type noopNotifier struct{}

func (noopNotifier) JobQueued(context.Context, *jobs.Job)        {}
func (noopNotifier) JobCompleted(context.Context, *jobs.Job)     {}
func (noopNotifier) JobFailed(context.Context, *jobs.Job, error) {}
