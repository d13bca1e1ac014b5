package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"neurospark-backend/internal/models"
)

type EmailService struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	frontendURL string
	devMode     bool
}

func NewEmailService(host, port, user, pass, from, frontendURL string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		frontendURL: frontendURL,
		devMode:     devMode,
	}
}

// SendProgressDigestEmail sends the weekly summary to the configured
// parent or teacher address.
func (s *EmailService) SendProgressDigestEmail(to, learnerName, summaryText string, stats models.ProgressStats) error {
	subject := fmt.Sprintf("%s's learning progress this week", learnerName)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #f59e0b 0%%, #f97316 100%%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">NeuroSpark</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Learning Made Fun</p>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">Weekly Progress</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 24px;">%s</p>
      <table style="width: 100%%; font-size: 14px; color: #1e293b; border-collapse: collapse;">
        <tr><td style="padding: 6px 0; color: #64748b;">Sessions completed</td><td style="text-align: right; font-weight: 600;">%d</td></tr>
        <tr><td style="padding: 6px 0; color: #64748b;">Current streak</td><td style="text-align: right; font-weight: 600;">%d days</td></tr>
        <tr><td style="padding: 6px 0; color: #64748b;">Time practiced</td><td style="text-align: right; font-weight: 600;">%d min</td></tr>
        <tr><td style="padding: 6px 0; color: #64748b;">Badges earned</td><td style="text-align: right; font-weight: 600;">%d</td></tr>
      </table>
      <p style="color: #94a3b8; font-size: 12px; margin: 24px 0 0;">
        See the full progress view at <a href="%s" style="color: #f97316;">%s</a>
      </p>
    </div>
  </div>
</body>
</html>`, summaryText, stats.TotalSessions, stats.CurrentStreak, stats.TotalTimeSpent, stats.BadgeCount, s.frontendURL, s.frontendURL)

	return s.sendHTML(to, subject, body)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}
