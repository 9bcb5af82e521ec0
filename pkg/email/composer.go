package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"salon-booking-backend/internal/domain"
	"salon-booking-backend/pkg/validation"
)

const (
	bookingSubjectPrefix = "Salon Booking Request: "
	careerSubjectPrefix  = "Academy Application: "
	timestampLayout      = "02 Jan 2006 15:04:05 MST"
)

// Composer renders notifications. Every submitted value goes through
// html/template, which escapes it for the context it lands in.
type Composer struct {
	recipient    string
	businessName string
	booking      *template.Template
	career       *template.Template
}

// NewComposer parses the templates once; recipient is fixed for the process lifetime.
func NewComposer(recipient, businessName string) *Composer {
	base := template.Must(template.New("layout").Parse(layoutTemplate))
	return &Composer{
		recipient:    recipient,
		businessName: businessName,
		booking:      template.Must(template.Must(base.Clone()).Parse(bookingTemplate)),
		career:       template.Must(template.Must(base.Clone()).Parse(careerTemplate)),
	}
}

type contactView struct {
	Name     string
	Email    string
	Phone    string
	PhoneURI string
}

type metaView struct {
	SubmittedAt string
	IPAddress   string
	UserAgent   string
	Reference   string
}

type bookingView struct {
	Title    string
	Business string
	Contact  contactView
	Service  string
	Date     string
	Time     string
	Message  string
	Meta     metaView
}

type careerView struct {
	Title      string
	Business   string
	Contact    contactView
	Program    string
	Age        string
	Education  string
	Batch      string
	Motivation string
	Meta       metaView
}

// Compose builds the notification for a validated submission.
func (c *Composer) Compose(sub *domain.FormSubmission) (*domain.NotificationMessage, error) {
	var (
		subject string
		tmpl    *template.Template
		data    any
	)

	contact := contactView{
		Name:     sub.Value("name"),
		Email:    sub.Value("email"),
		Phone:    sub.Value("phone"),
		PhoneURI: validation.NormalizePhone(sub.Value("phone")),
	}
	meta := metaView{
		SubmittedAt: sub.ReceivedAt.Format(timestampLayout),
		IPAddress:   orUnknown(sub.RemoteAddr),
		UserAgent:   orUnknown(sub.UserAgent),
		Reference:   sub.ID.String(),
	}

	switch sub.FormType {
	case domain.FormTypeBooking:
		subject = bookingSubjectPrefix + sub.Value("service") + " - " + contact.Name
		tmpl = c.booking
		data = bookingView{
			Title:    "Booking Request",
			Business: c.businessName,
			Contact:  contact,
			Service:  sub.Value("service"),
			Date:     sub.Value("appointment_date"),
			Time:     sub.Value("appointment_time"),
			Message:  sub.Value("message"),
			Meta:     meta,
		}
	case domain.FormTypeCareerApplication:
		program := ProgramLabel(sub.Value("program"))
		subject = careerSubjectPrefix + program + " - " + contact.Name
		tmpl = c.career
		data = careerView{
			Title:      "Academy Application",
			Business:   c.businessName,
			Contact:    contact,
			Program:    program,
			Age:        sub.Value("age"),
			Education:  EducationLabel(sub.Value("education")),
			Batch:      BatchLabel(sub.Value("batch")),
			Motivation: sub.Value("message"),
			Meta:       meta,
		}
	default:
		return nil, fmt.Errorf("unknown form type %q", sub.FormType)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	return &domain.NotificationMessage{
		Subject:  capRunes(headerSafe(subject), maxSubjectRunes),
		HTMLBody: body.String(),
		To:       c.recipient,
		ReplyTo:  contact.Email,
	}, nil
}

// headerSafe removes line breaks so the subject cannot inject headers.
func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

// maxSubjectRunes keeps the Subject header well under the 998 octet line limit.
const maxSubjectRunes = 150

func capRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

const layoutTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7a3e65; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #7a3e65; margin-top: 10px; white-space: pre-wrap; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div class="content">
            <div class="field"><span class="label">Name:</span> {{.Contact.Name}}</div>
            <div class="field"><span class="label">Email:</span> <a href="mailto:{{.Contact.Email}}">{{.Contact.Email}}</a></div>
            <div class="field"><span class="label">Phone:</span> <a href="tel:{{.Contact.PhoneURI}}">{{.Contact.Phone}}</a></div>
            {{template "details" .}}
        </div>
        <div class="footer">
            <p>Submitted: {{.Meta.SubmittedAt}} | IP: {{.Meta.IPAddress}}</p>
            <p>User agent: {{.Meta.UserAgent}}</p>
            <p>Reference: {{.Meta.Reference}}</p>
            <p>This email was sent from the {{.Business}} website. Reply to reach the sender directly.</p>
        </div>
    </div>
</body>
</html>`

const bookingTemplate = `{{define "details"}}
            <div class="field"><span class="label">Service:</span> {{.Service}}</div>
            <div class="field"><span class="label">Preferred Date:</span> {{.Date}}</div>
            {{- if .Time}}
            <div class="field"><span class="label">Preferred Time:</span> {{.Time}}</div>
            {{- end}}
            {{- if .Message}}
            <div class="field">
                <div class="label">Message:</div>
                <div class="message-box">{{.Message}}</div>
            </div>
            {{- end}}
{{end}}`

const careerTemplate = `{{define "details"}}
            <div class="field"><span class="label">Program:</span> {{.Program}}</div>
            {{- if .Age}}
            <div class="field"><span class="label">Age:</span> {{.Age}}</div>
            {{- end}}
            {{- if .Education}}
            <div class="field"><span class="label">Education:</span> {{.Education}}</div>
            {{- end}}
            {{- if .Batch}}
            <div class="field"><span class="label">Preferred Batch:</span> {{.Batch}}</div>
            {{- end}}
            <div class="field">
                <div class="label">Why do you want to join?</div>
                <div class="message-box">{{.Motivation}}</div>
            </div>
{{end}}`
