package approval

import (
	"context"
	"net/mail"
	"text/template"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

var decisionTemplates = map[Decision]*template.Template{
	Approved: template.Must(template.New("approved").Parse(
		`Good news! Your {{.Data.Role}} account ({{.Data.Email}}) has been approved.
You can now sign in at {{.FrontendBaseURL}}/auth
`)),
	Rejected: template.Must(template.New("rejected").Parse(
		`Your {{.Data.Role}} account request ({{.Data.Email}}) was not approved.
Reply to this email if you think this is a mistake.
`)),
}

var decisionSubjects = map[Decision]string{
	Approved: "Your account has been approved",
	Rejected: "Your account request was declined",
}

// MailNotifier emails the requester about the decision.
type MailNotifier struct {
	mail            core.EmailService
	frontendBaseURL string
}

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(mailSvc core.EmailService, frontendBaseURL string) *MailNotifier {
	return &MailNotifier{mail: mailSvc, frontendBaseURL: frontendBaseURL}
}

// Message builds the rendered email for a decision.
func (n *MailNotifier) Message(rec Record, decision Decision) (*core.EmailMessage, error) {
	tmpl, ok := decisionTemplates[decision]
	if !ok {
		return nil, errors.Errorf("unknown decision %q", decision)
	}
	if rec.Role == "" {
		rec.Role = "member"
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: rec.Email}},
		Subject:      decisionSubjects[decision],
		TextTemplate: tmpl,
		TemplateData: rec,
	}
	if err := msg.Render(n.frontendBaseURL); err != nil {
		return nil, errors.Wrap(err, "rendering decision email")
	}
	return msg, nil
}

func (n *MailNotifier) Notify(_ context.Context, rec Record, decision Decision) error {
	msg, err := n.Message(rec, decision)
	if err != nil {
		return err
	}
	n.mail.SendMessages(msg)
	return nil
}
