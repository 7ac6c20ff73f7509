package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"recruitflow/internal/config"
	"recruitflow/internal/model"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, m...)
	return nil
}

func body(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNew_WithoutHostIsNop(t *testing.T) {
	assert.IsType(t, Nop{}, New(config.SMTPConfig{}))
	assert.IsType(t, &Mailer{}, New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestMailer_CandidateAssigned(t *testing.T) {
	capture := &captureSender{}
	m := &Mailer{from: "noreply@recruitflow.io", sender: capture}

	candidate := &model.Candidate{FullName: "Ann <Lee>", Email: "ann@x.com"}
	recruiter := &model.Recruiter{FullName: "Rita", Email: "rita@x.com"}

	require.NoError(t, m.CandidateAssigned(context.Background(), candidate, recruiter))
	require.Len(t, capture.sent, 2)

	assert.Equal(t, []string{"ann@x.com"}, capture.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"rita@x.com"}, capture.sent[1].GetHeader("To"))
	assert.Contains(t, body(t, capture.sent[0]), "Ann &lt;Lee&gt;")
}

func TestMailer_SkipsMissingAddresses(t *testing.T) {
	capture := &captureSender{}
	m := &Mailer{sender: capture}

	require.NoError(t, m.CandidateAssigned(context.Background(), &model.Candidate{FullName: "Ann"}, &model.Recruiter{FullName: "Rita"}))
	require.NoError(t, m.CandidateUnassigned(context.Background(), &model.Candidate{FullName: "Ann"}, &model.Recruiter{FullName: "Rita"}))
	assert.Empty(t, capture.sent)
}

func TestMailer_SendError(t *testing.T) {
	m := &Mailer{sender: &captureSender{err: errors.New("connection refused")}}

	err := m.CandidateUnassigned(context.Background(), &model.Candidate{FullName: "Ann"}, &model.Recruiter{Email: "rita@x.com"})
	assert.ErrorContains(t, err, "connection refused")
}
