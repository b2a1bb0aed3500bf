package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/roohithbala/placement/config"
)

// smtpTimeout bounds the SMTP dial and every socket read/write. An
// unreachable mail server fails the enclosing operation instead of
// hanging it.
const smtpTimeout = 10 * time.Second

// EmailSender is the outbound notification collaborator. Reset issuance
// treats a send failure as fatal; the success confirmation is
// fire-and-forget.
type EmailSender interface {
	SendPasswordResetEmail(toEmail, resetToken string) error
	SendPasswordResetSuccessEmail(toEmail string) error
}

// EmailService sends transactional mail via SMTP with STARTTLS.
type EmailService struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	frontendURL string
}

// NewEmailService creates a new email service from the environment.
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	host := env.SMTP_HOST
	if host == "" {
		host = "smtp.gmail.com"
	}

	from := env.SMTP_FROM
	if from == "" {
		from = "noreply@placehub.app"
	}

	return &EmailService{
		host:        host,
		port:        env.SMTP_PORT,
		username:    env.SMTP_USERNAME,
		password:    env.SMTP_PASSWORD,
		from:        from,
		frontendURL: env.FRONTEND_URL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendPasswordResetEmail mails the reset link carrying the raw token.
// The token appears only in this mail; storage holds its digest.
func (e *EmailService) SendPasswordResetEmail(toEmail, resetToken string) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", e.frontendURL, resetToken)

	subject := "Password Reset Request - PlaceHub"
	body := e.buildPasswordResetEmailBody(resetLink)

	return e.sendEmail(toEmail, subject, body)
}

// SendPasswordResetSuccessEmail confirms a completed reset.
func (e *EmailService) SendPasswordResetSuccessEmail(toEmail string) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	subject := "Password Reset Successful - PlaceHub"
	body := e.buildPasswordResetSuccessEmailBody()

	return e.sendEmail(toEmail, subject, body)
}

func (e *EmailService) buildPasswordResetEmailBody(resetLink string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset Request - PlaceHub</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #667eea; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; }
        .button { display: inline-block; padding: 12px 30px; background: #667eea; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password Reset Request</h1>
        </div>
        <div class="content">
            <p>Hello,</p>
            <p>You requested to reset the password for your PlaceHub account. Click the button below to reset it:</p>
            <div style="text-align: center;">
                <a href="%s" class="button">Reset Password</a>
            </div>
            <p>Or copy and paste this link into your browser:</p>
            <p style="word-break: break-all; color: #667eea;">%s</p>
            <p><strong>This link will expire in 10 minutes.</strong></p>
            <p>If you didn't request this password reset, please ignore this email. Your password will remain unchanged.</p>
            <div class="footer">
                <p>&copy; PlaceHub. All rights reserved.</p>
            </div>
        </div>
    </div>
</body>
</html>`, resetLink, resetLink)
}

func (e *EmailService) buildPasswordResetSuccessEmailBody() string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset Successful - PlaceHub</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password Reset Successful</h1>
        </div>
        <div class="content">
            <p>Hello,</p>
            <p>Your password has been successfully reset.</p>
            <p>You can now log in to your PlaceHub account with your new password.</p>
            <p>If you did not make this change, please contact our support team immediately.</p>
            <div class="footer">
                <p>&copy; PlaceHub. All rights reserved.</p>
            </div>
        </div>
    </div>
</body>
</html>`
}

// sendEmail delivers one message over SMTP with STARTTLS, bounded by
// smtpTimeout end to end per socket operation.
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("PlaceHub <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	netConn, err := net.DialTimeout("tcp", addr, smtpTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if err := netConn.SetDeadline(time.Now().Add(smtpTimeout)); err != nil {
		netConn.Close()
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}

	conn, err := smtp.NewClient(netConn, e.host)
	if err != nil {
		netConn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer conn.Close()

	tlsConfig := &tls.Config{
		ServerName: e.host,
	}

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email sent to: %s (%s)", to, subject)
	return nil
}
