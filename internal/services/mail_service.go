package services

import (
	"fmt"
	"net/smtp"
	"os"

	"plume/internal/logger"
)

// MailService sends registration confirmation codes over SMTP. When
// the SMTP environment variables are absent it stays disabled and the
// application falls back to immediate sign-in after registration.
type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		logger.L().Warn("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

// SendConfirmationEmail mails the registration code.
func (s *MailService) SendConfirmationEmail(to, code string) error {
	if !s.Enabled {
		return fmt.Errorf("mail service is disabled")
	}

	subject := "Confirm your registration"
	body := fmt.Sprintf("Welcome!\r\n\r\nYour confirmation code is: %s\r\n", code)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.From, to, subject, body))

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, msg); err != nil {
		logger.L().Errorw("failed to send confirmation email", "to", to, "err", err)
		return err
	}
	return nil
}
