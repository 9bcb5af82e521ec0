package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"salon-booking-backend/config"
	"salon-booking-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		SMTPHost:       "smtp.example.com",
		SMTPPort:       "587",
		SMTPUsername:   "user",
		SMTPPassword:   "secret",
		SMTPFromEmail:  "noreply@premiersalon.example",
		ContactEmailTo: "info@premiersalon.example",
		BusinessName:   "Premier Salon",
	}
}

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func TestDeliverSendsOnce(t *testing.T) {
	s := NewSMTPSender(testConfig())
	s.clock = func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }

	var calls []sentMail
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		calls = append(calls, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}

	res := s.Deliver(context.Background(), &domain.NotificationMessage{
		Subject:  "Salon Booking Request: Haircut - Asha Rao",
		HTMLBody: "<p>hello</p>",
		To:       "info@premiersalon.example",
		ReplyTo:  "asha@example.com",
	})

	assert.True(t, res.Delivered)
	assert.Empty(t, res.Diagnostic)
	if assert.Len(t, calls, 1) {
		c := calls[0]
		assert.Equal(t, "smtp.example.com:587", c.addr)
		assert.Equal(t, "noreply@premiersalon.example", c.from)
		assert.Equal(t, []string{"info@premiersalon.example"}, c.to)
		assert.Contains(t, c.msg, "From: \"Premier Salon\" <noreply@premiersalon.example>\r\n")
		assert.Contains(t, c.msg, "Reply-To: <asha@example.com>\r\n")
		assert.Contains(t, c.msg, "Subject: Salon Booking Request: Haircut - Asha Rao\r\n")
		assert.Contains(t, c.msg, "Content-Type: text/html; charset=UTF-8\r\n")
		assert.Contains(t, c.msg, "@premiersalon.example>\r\n")
		assert.True(t, strings.HasSuffix(c.msg, "\r\n\r\n<p>hello</p>"))
	}
}

func TestDeliverReportsFailureWithoutRetry(t *testing.T) {
	s := NewSMTPSender(testConfig())

	calls := 0
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("535 authentication failed")
	}

	res := s.Deliver(context.Background(), &domain.NotificationMessage{To: "info@premiersalon.example"})

	assert.False(t, res.Delivered)
	assert.Contains(t, res.Diagnostic, "535 authentication failed")
	assert.Equal(t, 1, calls)
}

func TestDeliverNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPPassword = ""
	s := NewSMTPSender(cfg)
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not attempt delivery")
		return nil
	}

	res := s.Deliver(context.Background(), &domain.NotificationMessage{})
	assert.False(t, res.Delivered)
	assert.NotEmpty(t, res.Diagnostic)
}

func TestSenderCopiesConfig(t *testing.T) {
	cfg := testConfig()
	s := NewSMTPSender(cfg)
	cfg.SMTPFromEmail = "changed@example.com"

	assert.Equal(t, "noreply@premiersalon.example", s.fromEmail)
}

func TestSubjectIsEncoded(t *testing.T) {
	s := NewSMTPSender(testConfig())
	raw := string(s.buildMessage(&domain.NotificationMessage{Subject: "Booking: Café - Zoë", To: "a@b.com"}))
	assert.Contains(t, raw, "Subject: =?UTF-8?q?")
}

func TestMessageLinesStayWithinLimits(t *testing.T) {
	s := NewSMTPSender(testConfig())
	raw := string(s.buildMessage(&domain.NotificationMessage{
		Subject:  "Salon Booking Request: Coupe - " + strings.Repeat("Zoë ", 36),
		HTMLBody: "<p>" + strings.Repeat("x", 4000) + "</p>",
		To:       "a@b.com",
	}))

	header, body, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found)
	assert.Contains(t, header, "Content-Transfer-Encoding: quoted-printable\r\n")

	for _, line := range strings.Split(header, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
	assert.Contains(t, header, "\r\n =?UTF-8?q?", "long encoded subject is folded")

	for _, line := range strings.Split(body, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	assert.Equal(t, 4000, strings.Count(body, "x"))
}
