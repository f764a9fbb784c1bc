package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/clubhub/pkg/mailer/templates"
)

// ErrBadJob marks a message that can never be sent; the worker drops it.
var ErrBadJob = errors.New("bad email job")

// Build renders a job into subject, text and html.
func Build(job EmailJob) (subject, text, html string, err error) {
	if !job.Sendable() {
		return "", "", "", fmt.Errorf("%w: missing recipient or content", ErrBadJob)
	}
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	if !templates.Known(job.Template) {
		return "", "", "", fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
	}
	subject, text, html, err = templates.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	return subject, text, html, nil
}

// Handle decodes one queued message, renders it and sends it.
// Errors wrapping ErrBadJob should not be retried.
func Handle(ctx context.Context, s Sender, body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	subject, text, html, err := Build(job)
	if err != nil {
		return job, err
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return job, s.Send(c, job.To, subject, text, html)
}
