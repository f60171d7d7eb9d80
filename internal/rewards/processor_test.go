package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketing-hub/autowebinar/pkg/queue"
)

type recordingMailer struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (m *recordingMailer) SendEmail(_ context.Context, to, subject, bodyHTML string) error {
	m.calls++
	m.to = to
	m.subject = subject
	m.body = bodyHTML
	return m.err
}

func emailJob(t *testing.T, payload queue.EmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmail, Payload: raw}
}

func TestProcessEmailInvokesMailer(t *testing.T) {
	mailer := &recordingMailer{}
	p := NewProcessor(nil, nil, mailer, nil, nil)

	job := emailJob(t, queue.EmailPayload{
		EmailType:      "REMINDER_5MIN",
		RecipientEmail: "viewer@example.com",
		Subject:        "Starting in 5 minutes",
		BodyHTML:       "<p>See you soon</p>",
	})
	require.NoError(t, p.Process(context.Background(), job))

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "viewer@example.com", mailer.to)
	assert.Equal(t, "Starting in 5 minutes", mailer.subject)
	assert.Equal(t, "<p>See you soon</p>", mailer.body)
}

func TestProcessEmailPropagatesSendFailure(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	p := NewProcessor(nil, nil, mailer, nil, nil)

	job := emailJob(t, queue.EmailPayload{RecipientEmail: "viewer@example.com"})
	err := p.Process(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, 1, mailer.calls)
}

func TestProcessRejectsMalformedEmailPayload(t *testing.T) {
	mailer := &recordingMailer{}
	p := NewProcessor(nil, nil, mailer, nil, nil)

	job := &queue.Job{ID: "job-2", Type: queue.JobTypeEmail, Payload: json.RawMessage(`{`)}
	assert.Error(t, p.Process(context.Background(), job))
	assert.Zero(t, mailer.calls)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewProcessor(nil, nil, &recordingMailer{}, nil, nil)
	job := &queue.Job{ID: "job-3", Type: "mystery"}
	assert.Error(t, p.Process(context.Background(), job))
}
