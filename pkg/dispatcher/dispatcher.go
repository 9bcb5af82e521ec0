// Package dispatcher drives one form from the submit trigger to the
// rendered outcome: honeypot check, field validation, a single network
// call and user feedback.
package dispatcher

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"salon-booking-backend/pkg/validation"
)

// User-facing messages
const (
	BusyLabel      = "Sending..."
	GenericFailure = "Something went wrong. Please try again."
	NetworkFailure = "Network error. Please check your connection and try again."
)

// DefaultSuccessDisplay is how long the success notice stays up.
const DefaultSuccessDisplay = 5 * time.Second

// ErrSubmissionInFlight is returned when Submit is called on a dispatcher
// that has not returned to Idle yet.
var ErrSubmissionInFlight = errors.New("submission already in flight")

type State int

const (
	Idle State = iota
	Validating
	Blocked
	Submitting
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Blocked:
		return "blocked"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Form is the input side of the page.
type Form interface {
	Values() map[string]string
	Reset()
}

// Presenter renders feedback. An empty message in SetFieldError clears the
// annotation of that field.
type Presenter interface {
	SetFieldError(field, message string)
	SetBusy(busy bool, label string)
	ShowSuccess(message string, display time.Duration)
	ShowError(message string)
}

// Reply is the decoded server answer.
type Reply struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	// Discarded is set for a bodyless 204
	Discarded bool `json:"-"`
}

// OK reports whether the server accepted the submission.
func (r *Reply) OK() bool {
	return r.Status == "ok" || r.Status == "accepted"
}

// Transport sends the serialized form. A returned error means the request
// could not complete; server-side failures come back as a Reply.
type Transport interface {
	Send(ctx context.Context, values url.Values) (*Reply, error)
}

// Result summarizes one Submit call. Outcome is the last non-idle state
// reached, or Idle when the honeypot aborted the attempt.
type Result struct {
	Outcome     State
	Message     string
	FieldErrors map[string]string
}

type Option func(*Dispatcher)

func WithSuccessDisplay(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.successDisplay = d }
}

// WithObserver is called on every state change, under no lock.
func WithObserver(fn func(from, to State)) Option {
	return func(disp *Dispatcher) { disp.observe = fn }
}

// Dispatcher handles one form instance. Distinct dispatchers share nothing.
type Dispatcher struct {
	formType  string
	form      Form
	presenter Presenter
	transport Transport
	validator *validation.Validator

	successDisplay time.Duration
	observe        func(from, to State)

	mu    sync.Mutex
	state State
}

func New(formType string, form Form, presenter Presenter, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		formType:       formType,
		form:           form,
		presenter:      presenter,
		transport:      transport,
		validator:      validation.New(),
		successDisplay: DefaultSuccessDisplay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Submit runs one attempt. It always leaves the dispatcher Idle.
func (d *Dispatcher) Submit(ctx context.Context) (Result, error) {
	d.mu.Lock()
	if d.state != Idle {
		d.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	d.state = Validating
	d.mu.Unlock()
	d.notify(Idle, Validating)

	values := d.form.Values()

	// Bots fill every field. Stop without a trace.
	if validation.HoneypotFilled(values[validation.HoneypotField]) {
		d.transition(Idle)
		return Result{Outcome: Idle}, nil
	}

	report := d.validator.Submission(d.formType, values)
	fieldErrors := make(map[string]string)
	for _, field := range report.Fields() {
		o := report.Outcomes[field]
		d.presenter.SetFieldError(field, o.Message)
		if !o.Valid {
			fieldErrors[field] = o.Message
		}
	}
	if !report.Valid() {
		d.transition(Blocked)
		d.transition(Idle)
		return Result{Outcome: Blocked, FieldErrors: fieldErrors}, nil
	}

	d.transition(Submitting)
	d.presenter.SetBusy(true, BusyLabel)
	defer func() {
		d.presenter.SetBusy(false, "")
		d.transition(Idle)
	}()

	reply, err := d.transport.Send(ctx, d.encode(values))
	if err != nil {
		d.transition(Failure)
		d.presenter.ShowError(NetworkFailure)
		return Result{Outcome: Failure, Message: NetworkFailure}, nil
	}

	if reply.Discarded {
		return Result{Outcome: Idle}, nil
	}

	if reply.OK() {
		d.transition(Success)
		d.form.Reset()
		d.presenter.ShowSuccess(reply.Message, d.successDisplay)
		return Result{Outcome: Success, Message: reply.Message}, nil
	}

	msg := failureMessage(reply)
	d.transition(Failure)
	d.presenter.ShowError(msg)
	return Result{Outcome: Failure, Message: msg}, nil
}

func (d *Dispatcher) encode(values map[string]string) url.Values {
	form := make(url.Values, len(values)+1)
	for k, v := range values {
		form.Set(k, v)
	}
	if form.Get("form_type") == "" {
		form.Set("form_type", d.formType)
	}
	return form
}

func (d *Dispatcher) transition(to State) {
	d.mu.Lock()
	from := d.state
	d.state = to
	d.mu.Unlock()
	d.notify(from, to)
}

func (d *Dispatcher) notify(from, to State) {
	if d.observe != nil {
		d.observe(from, to)
	}
}

// failureMessage prefers the itemized errors, then the server message.
func failureMessage(r *Reply) string {
	if len(r.Errors) > 0 {
		return strings.Join(r.Errors, "\n")
	}
	if strings.TrimSpace(r.Message) != "" {
		return r.Message
	}
	return GenericFailure
}
