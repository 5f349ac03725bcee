package utils

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	AppName  string
	CodeExp  int
}

// EmailManager is the external delivery channel for verification codes.
// Sends are synchronous: the login flow must not tell the client a code is
// on its way until SendMail has returned.
type EmailManager struct {
	Config *SMTPConfig
}

func NewEmailManager(config *SMTPConfig) *EmailManager {
	return &EmailManager{
		Config: config,
	}
}

// send is a private helper that handles the actual SMTP handshake and delivery
func (em *EmailManager) send(toEmail string, subject string, body string) error {
	smtpAddr := fmt.Sprintf("%s:%d", em.Config.Host, em.Config.Port)

	// Constructing headers according to RFC 822 standards
	// Note the use of \r\n (Carriage Return + Line Feed)
	headers := []string{
		fmt.Sprintf("From: %s", em.Config.User),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"", // This empty string creates the necessary blank line between headers and body
		body,
	}

	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", em.Config.User, em.Config.Password, em.Config.Host)

	return smtp.SendMail(smtpAddr, auth, em.Config.User, []string{toEmail}, []byte(message))
}

// SendLoginCode delivers a login verification code. Satisfies
// security.Mailer.
func (em *EmailManager) SendLoginCode(toEmail string, code string) error {
	subject := fmt.Sprintf("%s - Your Login Verification Code", em.Config.AppName)

	body := fmt.Sprintf(
		"Hello,\n\n"+
			"You requested a code to sign in to the %s backend. Please use the verification code below to continue:\n\n"+
			"Login Code: %s\n\n"+
			"This code will expire in %d minutes. If you did not request this login, contact your administrator immediately.\n\n"+
			"Best regards,\n"+
			"The %s Team",
		em.Config.AppName, code, em.Config.CodeExp, em.Config.AppName)

	return em.send(toEmail, subject, body)
}
