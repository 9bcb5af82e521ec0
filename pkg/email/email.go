package email

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"salon-booking-backend/config"
	"salon-booking-backend/internal/domain"

	"github.com/google/uuid"
)

// SMTPSender hands notifications to an SMTP relay
type SMTPSender struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	fromName  string
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	clock     func() time.Time
}

// NewSMTPSender copies the sender identity out of cfg; later changes to cfg
// have no effect.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		fromName:  cfg.BusinessName,
		sendMail:  smtp.SendMail,
		clock:     time.Now,
	}
}

// IsConfigured checks if the sender has valid SMTP configuration
func (s *SMTPSender) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.fromEmail != ""
}

// Deliver makes exactly one attempt. Failures are reported, never retried.
// There is no timeout beyond what the relay imposes.
func (s *SMTPSender) Deliver(ctx context.Context, msg *domain.NotificationMessage) domain.DeliveryResult {
	if !s.IsConfigured() {
		return domain.DeliveryResult{Diagnostic: "smtp: sender is not configured"}
	}
	if err := ctx.Err(); err != nil {
		return domain.DeliveryResult{Diagnostic: fmt.Sprintf("smtp: request abandoned before send: %v", err)}
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := s.sendMail(addr, auth, s.fromEmail, []string{msg.To}, s.buildMessage(msg)); err != nil {
		return domain.DeliveryResult{Diagnostic: fmt.Sprintf("smtp: failed to send email via %s: %v", addr, err)}
	}
	return domain.DeliveryResult{Delivered: true}
}

func (s *SMTPSender) buildMessage(msg *domain.NotificationMessage) []byte {
	from := mail.Address{Name: s.fromName, Address: s.fromEmail}
	to := mail.Address{Address: msg.To}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", to.String())
	if msg.ReplyTo != "" {
		replyTo := mail.Address{Address: msg.ReplyTo}
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo.String())
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeHeader(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.clock().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domainOf(s.fromEmail))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")

	// Soft line breaks keep every body line under 76 characters
	qp := quotedprintable.NewWriter(&b)
	qp.Write([]byte(msg.HTMLBody))
	qp.Close()
	return b.Bytes()
}

// encodeHeader RFC 2047 encodes a header value and folds between encoded
// words so no physical line grows past the limit.
func encodeHeader(value string) string {
	return strings.ReplaceAll(mime.QEncoding.Encode("UTF-8", value), "?= =?", "?=\r\n =?")
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "localhost"
}
