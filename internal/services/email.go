package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/codemule/adminbase/backend/pkg/logger"
	"gorm.io/gorm"
)

// EmailService sends transactional mail using SMTP settings stored in
// system_configs. Delivery failures are logged and reported to the caller,
// but primary flows (password reset, verification) must never fail on them.
type EmailService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db, configSvc: NewSystemConfigService(db)}
}

func (s *EmailService) GetConfig() *EmailConfig {
	return &EmailConfig{
		Enabled:  s.configSvc.GetBool("email_enabled"),
		Host:     s.configSvc.Get("email_host"),
		Port:     s.configSvc.GetInt("email_port", 587),
		Username: s.configSvc.Get("email_username"),
		Password: s.configSvc.Get("email_password"),
		From:     s.configSvc.Get("email_from"),
		UseTLS:   s.configSvc.GetBool("email_use_tls"),
	}
}

// ProcessEmailTask dispatches a queued email task to the proper sender.
func (s *EmailService) ProcessEmailTask(_ context.Context, task *EmailTask) error {
	switch task.Kind {
	case EmailKindPasswordReset:
		return s.SendPasswordResetEmail(task.To, task.Token)
	default:
		logger.Warnf("[Email] Unknown email task kind: %s", task.Kind)
		return nil
	}
}

// SendPasswordResetEmail mails a reset link built from the site URL setting.
func (s *EmailService) SendPasswordResetEmail(to, token string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		logger.Debugf("[Email] Sending disabled, dropping password reset mail to %s", to)
		return nil
	}

	siteName := s.configSvc.GetWithDefault("site_name", "AdminBase")
	siteURL := s.configSvc.GetWithDefault("site_url", "http://localhost:8080")
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(siteURL, "/"), token)

	subject := fmt.Sprintf("[%s] Password reset request", siteName)
	body := s.buildResetBody(siteName, resetURL)

	return s.sendEmail(config, []string{to}, subject, body)
}

func (s *EmailService) buildResetBody(siteName, resetURL string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>%s password reset</h2>", siteName))
	sb.WriteString("<p>A password reset was requested for your account. The link below is valid for one hour and can be used once.</p>")
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\">Reset your password</a></p>", resetURL))
	sb.WriteString("<p>If you did not request this, you can safely ignore this email.</p>")
	sb.WriteString(fmt.Sprintf("<hr><p style=\"color: #888; font-size: 12px;\">Powered by %s</p>", siteName))
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Errorf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent mail to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
