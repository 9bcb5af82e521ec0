package domain

import (
	"context"
	"strings"
	"time"

	"salon-booking-backend/pkg/validation"

	"github.com/google/uuid"
)

const HoneypotField = validation.HoneypotField

type FormType string

const (
	FormTypeBooking           FormType = validation.FormBooking
	FormTypeCareerApplication FormType = validation.FormCareerApplication
)

// ParseFormType defaults an absent discriminator to booking.
func ParseFormType(raw string) (FormType, bool) {
	switch FormType(strings.TrimSpace(raw)) {
	case "", FormTypeBooking:
		return FormTypeBooking, true
	case FormTypeCareerApplication:
		return FormTypeCareerApplication, true
	default:
		return "", false
	}
}

// FormSubmission lives for a single request and is never persisted.
type FormSubmission struct {
	ID       uuid.UUID
	FormType FormType
	Fields   map[string]string
	Honeypot string

	RemoteAddr string
	UserAgent  string
	ReceivedAt time.Time
}

// Value returns the trimmed value of a field, or "" when absent.
func (s *FormSubmission) Value(name string) string {
	return strings.TrimSpace(s.Fields[name])
}

func (s *FormSubmission) IsSpam() bool {
	return validation.HoneypotFilled(s.Honeypot)
}

// NotificationMessage is what gets handed to the delivery channel.
type NotificationMessage struct {
	Subject  string
	HTMLBody string
	To       string
	ReplyTo  string
}

type DeliveryResult struct {
	Delivered bool
	// Diagnostic is for server logs only
	Diagnostic string
}

// SubmissionResult is the success outcome of a submission.
type SubmissionResult struct {
	ReferenceID uuid.UUID
	Message     string
}

// Composer builds the notification for a validated submission.
type Composer interface {
	Compose(sub *FormSubmission) (*NotificationMessage, error)
}

// Notifier performs exactly one delivery attempt.
type Notifier interface {
	Deliver(ctx context.Context, msg *NotificationMessage) DeliveryResult
}

// SubmissionUsecase defines the server side of the submission pipeline
type SubmissionUsecase interface {
	// Submit revalidates, composes and delivers a submission
	Submit(ctx context.Context, sub *FormSubmission) (*SubmissionResult, error)
}

// SubmissionRequest documents the wire form of both the booking and the
// academy form. The handler binds into a string map so JSON numbers and
// booleans are accepted; fields are validated by the usecase so that the
// messages match the ones shown in the browser.
type SubmissionRequest struct {
	FormType        string `form:"form_type" json:"form_type"`
	Name            string `form:"name" json:"name"`
	Phone           string `form:"phone" json:"phone"`
	Email           string `form:"email" json:"email"`
	Service         string `form:"service" json:"service"`
	Program         string `form:"program" json:"program"`
	AppointmentDate string `form:"appointment_date" json:"appointment_date"`
	AppointmentTime string `form:"appointment_time" json:"appointment_time"`
	Message         string `form:"message" json:"message"`
	Age             string `form:"age" json:"age"`
	Education       string `form:"education" json:"education"`
	Batch           string `form:"batch" json:"batch"`
	// Honeypot
	Company string `form:"company" json:"company"`
}

// FieldNames are the form fields carried into a FormSubmission.
var FieldNames = []string{
	"name", "phone", "email", "service", "program",
	"appointment_date", "appointment_time", "message",
	"age", "education", "batch",
}

// SubmissionFields keeps the known, non-empty fields of a bound request.
// The discriminator and the honeypot are not fields.
func SubmissionFields(values map[string]string) map[string]string {
	fields := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		if v := values[name]; v != "" {
			fields[name] = v
		}
	}
	return fields
}
