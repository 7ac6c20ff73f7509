package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"recruitflow/internal/config"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
)

// Notifier tells people about changes that concern them.
type Notifier interface {
	CandidateAssigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error
	CandidateUnassigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	from   string
	sender sender
}

// New returns a Mailer for cfg, or a no-op notifier when SMTP is not configured.
func New(cfg config.SMTPConfig) Notifier {
	if cfg.Host == "" {
		return Nop{}
	}
	return &Mailer{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

var (
	assignedCandidateTmpl = template.Must(template.New("assigned_candidate").Parse(
		`<p>Hi {{.Candidate}},</p><p>{{.Recruiter}} is now your recruiter and will be in touch shortly.</p>`))
	assignedRecruiterTmpl = template.Must(template.New("assigned_recruiter").Parse(
		`<p>Hi {{.Recruiter}},</p><p>{{.Candidate}} ({{.Email}}) has been assigned to you.</p>`))
	unassignedRecruiterTmpl = template.Must(template.New("unassigned_recruiter").Parse(
		`<p>Hi {{.Recruiter}},</p><p>{{.Candidate}} is no longer assigned to you.</p>`))
)

type mailData struct {
	Candidate string
	Recruiter string
	Email     string
}

func (m *Mailer) CandidateAssigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error {
	data := mailData{Candidate: candidate.FullName, Recruiter: recruiter.FullName, Email: candidate.Email}

	var msgs []*gomail.Message
	if candidate.Email != "" {
		msg, err := m.message(candidate.Email, "Your recruiter has been assigned", assignedCandidateTmpl, data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if recruiter.Email != "" {
		msg, err := m.message(recruiter.Email, "New candidate assigned: "+candidate.FullName, assignedRecruiterTmpl, data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return m.send(msgs...)
}

func (m *Mailer) CandidateUnassigned(ctx context.Context, candidate *model.Candidate, recruiter *model.Recruiter) error {
	if recruiter.Email == "" {
		return nil
	}
	data := mailData{Candidate: candidate.FullName, Recruiter: recruiter.FullName}
	msg, err := m.message(recruiter.Email, "Candidate unassigned: "+candidate.FullName, unassignedRecruiterTmpl, data)
	if err != nil {
		return err
	}
	return m.send(msg)
}

func (m *Mailer) message(to, subject string, tmpl *template.Template, data mailData) (*gomail.Message, error) {
	var body strings.Builder
	if err := tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())
	return msg, nil
}

func (m *Mailer) send(msgs ...*gomail.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := m.sender.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	logger.Debug("notification mail sent", "count", len(msgs))
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) CandidateAssigned(context.Context, *model.Candidate, *model.Recruiter) error { return nil }

func (Nop) CandidateUnassigned(context.Context, *model.Candidate, *model.Recruiter) error { return nil }
