package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"net/url"

	"github.com/podiumpicks/podium-api/config"
)

type EmailService struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewEmailService(cfg *config.Config, logger *slog.Logger) *EmailService {
	return &EmailService{cfg: cfg, logger: logger}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	// Without an SMTP host outbound mail is disabled; mutations never depend
	// on delivery, so dropping the message is the whole disabled mode.
	if s.cfg.SMTPHost == "" {
		s.logger.Debug("smtp not configured, dropping email", "subject", subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS.
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client failed: %w", err)
		}
	} else {
		// STARTTLS, typically port 587.
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("starttls failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("mail from failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data command failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("message write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("data close failed: %w", err)
	}

	return nil
}

func (s *EmailService) GenerateEmailBody(templatePath string, data interface{}) (string, error) {
	t, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templatePath, err)
	}

	return body.String(), nil
}

// SendVerificationEmail runs in its own goroutine; failures are logged, not
// surfaced to the registering user.
func (s *EmailService) SendVerificationEmail(userEmail, nickname, token string) {
	go func() {
		link := fmt.Sprintf("%s/verify-email?email=%s&token=%s",
			s.cfg.PublicURL, url.QueryEscape(userEmail), url.QueryEscape(token))

		body, err := s.GenerateEmailBody("templates/emails/verification.html", struct {
			Nickname         string
			VerificationLink string
		}{
			Nickname:         nickname,
			VerificationLink: link,
		})
		if err != nil {
			s.logger.Error("failed to render verification email", "email", userEmail, "error", err)
			return
		}

		if err := s.SendEmail([]string{userEmail}, "Confirm your Podium Picks account", body); err != nil {
			s.logger.Error("failed to send verification email", "email", userEmail, "error", err)
		}
	}()
}

// SendAdminUserVerifiedEmail tells the league admin a player finished email
// verification. No-op when ADMIN_EMAIL is not configured.
func (s *EmailService) SendAdminUserVerifiedEmail(nickname, userEmail string) {
	if s.cfg.AdminEmail == "" {
		return
	}
	go func() {
		body, err := s.GenerateEmailBody("templates/emails/user_verified.html", struct {
			Nickname string
			Email    string
		}{
			Nickname: nickname,
			Email:    userEmail,
		})
		if err != nil {
			s.logger.Error("failed to render admin notification email", "email", userEmail, "error", err)
			return
		}

		if err := s.SendEmail([]string{s.cfg.AdminEmail}, "New verified player: "+nickname, body); err != nil {
			s.logger.Error("failed to send admin notification email", "email", s.cfg.AdminEmail, "error", err)
		}
	}()
}

// SendResultConfirmedEmail notifies players that scores for a race are in.
func (s *EmailService) SendResultConfirmedEmail(recipients []string, raceName string) {
	if len(recipients) == 0 {
		return
	}
	go func() {
		body, err := s.GenerateEmailBody("templates/emails/result_confirmed.html", struct {
			RaceName       string
			LeaderboardURL string
		}{
			RaceName:       raceName,
			LeaderboardURL: s.cfg.PublicURL + "/leaderboard",
		})
		if err != nil {
			s.logger.Error("failed to render result email", "race", raceName, "error", err)
			return
		}

		for _, rcpt := range recipients {
			if err := s.SendEmail([]string{rcpt}, "Results are in: "+raceName, body); err != nil {
				s.logger.Error("failed to send result email", "email", rcpt, "error", err)
			}
		}
	}()
}
