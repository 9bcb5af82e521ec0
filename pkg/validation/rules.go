package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Form type discriminators, as sent in the form_type field.
const (
	FormBooking           = "booking"
	FormCareerApplication = "career_application"
)

// HoneypotField must stay empty for humans; the input is hidden on the page.
const HoneypotField = "company"

// HoneypotFilled is the single spam test used by client and server.
// Whitespace alone does not count as filled.
func HoneypotFilled(value string) bool {
	return strings.TrimSpace(value) != ""
}

// GenericMessage is used for required fields without a dedicated rule.
const GenericMessage = "This field is required."

// Rule binds a field to a validator tag and the message shown when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Rules is the single rule set shared by the server handler and the client dispatcher.
var Rules = map[string]Rule{
	"name":             {Tag: "full_name", Message: "Please enter your full name"},
	"phone":            {Tag: "mobile_phone", Message: "Enter a valid phone number"},
	"email":            {Tag: "contact_email", Message: "Enter a valid email"},
	"service":          {Tag: "not_blank", Message: "Select a service"},
	"appointment_date": {Tag: "not_blank", Message: "Choose a date"},
	"program":          {Tag: "not_blank", Message: "Select a program"},
}

var genericRule = Rule{Tag: "not_blank", Message: GenericMessage}

// tagMessages covers the server-only date tags.
var tagMessages = map[string]string{
	"calendar_date": "Date format invalid.",
	"not_past":      "Date must be today or later.",
}

// DateFields are checked for format and not-in-the-past whenever present.
var DateFields = []string{"appointment_date"}

var requiredFields = map[string][]string{
	FormBooking:           {"name", "phone", "email", "service", "appointment_date"},
	FormCareerApplication: {"name", "phone", "email", "program"},
}

// RequiredFor returns the required fields of a form type, or nil when the
// type is unknown.
func RequiredFor(formType string) []string {
	fields, ok := requiredFields[formType]
	if !ok {
		return nil
	}
	return append([]string(nil), fields...)
}

// Outcome is the result of validating one field. Message is empty when valid.
type Outcome struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type Option func(*Validator)

// WithServerChecks enables date parsing and the not-in-the-past check.
// Only the server runs them: the client's clock is not trusted.
func WithServerChecks() Option {
	return func(v *Validator) { v.serverChecks = true }
}

func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// Validator is safe for concurrent use.
type Validator struct {
	validate     *validator.Validate
	now          func() time.Time
	serverChecks bool
}

func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	v.validate = validator.New()
	RegisterValidators(v.validate, func() time.Time { return v.now() })
	return v
}

// Field validates a single raw value. It never looks at other fields.
func (v *Validator) Field(name, raw string) Outcome {
	rule, ok := Rules[name]
	if !ok {
		rule = genericRule
	}

	tags := rule.Tag
	if v.serverChecks && isDateField(name) && strings.TrimSpace(raw) != "" {
		tags += ",calendar_date,not_past"
	}

	if err := v.validate.Var(raw, tags); err != nil {
		return Outcome{Message: messageFor(rule, err)}
	}
	return Outcome{Valid: true}
}

// Submission validates every required field of formType plus any date
// field that was filled in.
func (v *Validator) Submission(formType string, values map[string]string) Report {
	fields := RequiredFor(formType)
	for _, f := range DateFields {
		if strings.TrimSpace(values[f]) != "" && !contains(fields, f) {
			fields = append(fields, f)
		}
	}

	report := Report{Outcomes: make(map[string]Outcome, len(fields)), fields: fields}
	for _, f := range fields {
		report.Outcomes[f] = v.Field(f, values[f])
	}
	return report
}

// Report is the submission-level outcome.
type Report struct {
	Outcomes map[string]Outcome
	fields   []string
}

// Valid is true only if every evaluated field is valid.
func (r Report) Valid() bool {
	for _, o := range r.Outcomes {
		if !o.Valid {
			return false
		}
	}
	return true
}

// Fields lists the evaluated fields in evaluation order.
func (r Report) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Messages returns the failure messages in field order.
func (r Report) Messages() []string {
	var messages []string
	for _, f := range r.fields {
		if o := r.Outcomes[f]; !o.Valid {
			messages = append(messages, o.Message)
		}
	}
	return messages
}

func messageFor(rule Rule, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return rule.Message
	}
	tag := verrs[0].Tag()
	if tag == rule.Tag {
		return rule.Message
	}
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return rule.Message
}

func isDateField(name string) bool {
	return contains(DateFields, name)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
