package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

// PasswordResetMailer delivers the reset OTP and link over SMTP. The
// reset token travels only through this channel, never in an API body.
type PasswordResetMailer struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	frontendURL string
	timeout     time.Duration
}

func NewPasswordResetMailer(host, port, username, password, from, frontendURL string, timeout time.Duration) *PasswordResetMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PasswordResetMailer{
		host:        strings.TrimSpace(host),
		port:        strings.TrimSpace(port),
		username:    username,
		password:    password,
		from:        strings.TrimSpace(from),
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		timeout:     timeout,
	}
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, otp, resetToken string, otpTTL time.Duration) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		m.frontendURL, url.QueryEscape(resetToken), url.QueryEscape(email))

	subject := "Password Reset OTP - Dreams LMS"
	body := fmt.Sprintf(`<h3>Password Reset Request</h3>
<p>Your OTP for password reset is: <strong>%s</strong></p>
<p>Use this OTP along with the reset link to set your new password.</p>
<p>Link: <a href="%s">Reset Password</a></p>
<p>This OTP is valid for %d minutes.</p>`, otp, resetLink, int(otpTTL.Minutes()))

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	return m.send(ctx, email, []byte(message.String()))
}

// send speaks SMTP over a connection with an explicit deadline so an
// unresponsive relay cannot hang the request indefinitely.
func (m *PasswordResetMailer) send(ctx context.Context, recipient string, payload []byte) error {
	deadline := time.Now().Add(m.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	addr := net.JoinHostPort(m.host, m.port)
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if m.username != "" || m.password != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("mail: rcpt: %w", err)
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		_ = writer.Close()
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mail: close: %w", err)
	}
	return client.Quit()
}
