package core

import (
	"bytes"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string // text/plain

		// templated content, rendered into Body
		Template     *texttmpl.Template
		TemplateData interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// PasswordResetTemplate renders the reset link mailed by POST /auth/forgot-password.
var PasswordResetTemplate = texttmpl.Must(texttmpl.New("password_reset").Parse(
	`Hola {{.Name}},

Recibimos una solicitud para restablecer tu contraseña.
Usa este enlace para elegir una nueva: {{.BaseURL}}/reset-password?token={{.Token}}

Si no la solicitaste, ignora este mensaje.
`))

func (m *EmailMessage) Render() error {
	if m.Template == nil {
		return nil
	}
	var buff bytes.Buffer
	if err := m.Template.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "rendering "+m.Template.Name())
	}
	m.Body = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }
