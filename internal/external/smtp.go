package external

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"weatherguard/internal/types"
)

// smtpSessionTimeout bounds a whole session when the caller's context
// carries no deadline. A stalled mail server must not hang the alert pass.
const smtpSessionTimeout = 30 * time.Second

// SMTPClientConfig holds the configuration for an SMTPClient.
type SMTPClientConfig struct {
	Host     string
	Port     int
	Password string // empty disables authentication
	UseTLS   bool   // issue STARTTLS after connecting
}

// SMTPClient implements EmailProvider over a direct SMTP session. It exists
// for deployments that relay through their own mail server instead of the
// Resend API. Each Send opens a fresh session; alert volume is far too low
// for connection pooling to matter.
type SMTPClient struct {
	cfg    SMTPClientConfig
	dialFn func(ctx context.Context, addr string) (net.Conn, error)
}

// NewSMTPClient builds an SMTPClient.
func NewSMTPClient(cfg SMTPClientConfig) *SMTPClient {
	d := &net.Dialer{}
	return &SMTPClient{
		cfg: cfg,
		dialFn: func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

// Send delivers the message over SMTP. SMTP assigns no message id, so a
// locally generated one is returned for logging correlation.
func (s *SMTPClient) Send(ctx context.Context, input types.SendInput) (string, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	conn, err := s.dialFn(ctx, addr)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"connecting to SMTP server "+addr, err)
	}

	// net/smtp has no context plumbing past the dial, so the context
	// deadline is applied to the connection itself.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(smtpSessionTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"setting SMTP session deadline", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"SMTP handshake failed", err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return "", types.NewAppError(types.ErrCodeSendFailed,
				"SMTP STARTTLS failed", err)
		}
	}

	if s.cfg.Password != "" {
		auth := smtp.PlainAuth("", input.From.Address, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return "", types.NewAppError(types.ErrCodeSendFailed,
				"SMTP authentication failed", err)
		}
	}

	if err := client.Mail(input.From.Address); err != nil {
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"SMTP MAIL FROM rejected", err)
	}
	if err := client.Rcpt(input.To); err != nil {
		return "", types.NewAppError(types.ErrCodeSendBlocked,
			"SMTP recipient rejected: "+input.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"SMTP DATA rejected", err)
	}
	if _, err := w.Write(buildSMTPMessage(input)); err != nil {
		w.Close()
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"writing SMTP message body", err)
	}
	if err := w.Close(); err != nil {
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"finalizing SMTP message", err)
	}
	if err := client.Quit(); err != nil {
		return "", types.NewAppError(types.ErrCodeSendFailed,
			"SMTP QUIT failed", err)
	}

	return uuid.NewString(), nil
}

// buildSMTPMessage renders the RFC 5322 message with CRLF line endings.
func buildSMTPMessage(input types.SendInput) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", formatSender(input.From))
	fmt.Fprintf(&b, "To: %s\r\n", input.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", input.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(input.BodyText, "\n", "\r\n"))
	return []byte(b.String())
}

var _ EmailProvider = (*SMTPClient)(nil)
