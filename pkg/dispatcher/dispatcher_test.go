package dispatcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"salon-booking-backend/pkg/dispatcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, values url.Values) (*dispatcher.Reply, error) {
	args := m.Called(ctx, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatcher.Reply), args.Error(1)
}

type fakeForm struct {
	values map[string]string
	resets int
}

func (f *fakeForm) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *fakeForm) Reset() {
	f.resets++
	f.values = map[string]string{}
}

type recordingPresenter struct {
	mu          sync.Mutex
	fieldErrors map[string]string
	busy        []bool
	busyLabel   string
	successes   []string
	errors      []string
	display     time.Duration
}

func newPresenter() *recordingPresenter {
	return &recordingPresenter{fieldErrors: map[string]string{}}
}

func (p *recordingPresenter) SetFieldError(field, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if message == "" {
		delete(p.fieldErrors, field)
		return
	}
	p.fieldErrors[field] = message
}

func (p *recordingPresenter) SetBusy(busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = append(p.busy, busy)
	if busy {
		p.busyLabel = label
	}
}

func (p *recordingPresenter) ShowSuccess(message string, display time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes = append(p.successes, message)
	p.display = display
}

func (p *recordingPresenter) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, message)
}

func validBooking() map[string]string {
	return map[string]string{
		"name":             "Asha Rao",
		"phone":            "+91 98765 43210",
		"email":            "asha@example.com",
		"service":          "Haircut",
		"appointment_date": "2030-01-01",
		"company":          "",
	}
}

func TestHoneypotAbortsSilently(t *testing.T) {
	form := &fakeForm{values: validBooking()}
	form.values["company"] = "bot"
	presenter := newPresenter()
	transport := new(MockTransport)

	d := dispatcher.New("booking", form, presenter, transport)
	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Idle, res.Outcome)
	assert.Equal(t, dispatcher.Idle, d.State())
	assert.Empty(t, presenter.errors)
	assert.Empty(t, presenter.successes)
	assert.Empty(t, presenter.busy)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestValidationBlocksSubmission(t *testing.T) {
	form := &fakeForm{values: validBooking()}
	form.values["phone"] = "12345"
	form.values["email"] = "not-an-email"
	presenter := newPresenter()
	presenter.fieldErrors["name"] = "stale message"
	transport := new(MockTransport)

	var states []dispatcher.State
	d := dispatcher.New("booking", form, presenter, transport,
		dispatcher.WithObserver(func(_, to dispatcher.State) { states = append(states, to) }))

	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Blocked, res.Outcome)
	assert.Equal(t, map[string]string{
		"phone": "Enter a valid phone number",
		"email": "Enter a valid email",
	}, res.FieldErrors)
	assert.Equal(t, res.FieldErrors, presenter.fieldErrors, "stale annotation on a passing field must be cleared")
	assert.Equal(t, []dispatcher.State{dispatcher.Validating, dispatcher.Blocked, dispatcher.Idle}, states)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestClientSkipsPastDateCheck(t *testing.T) {
	form := &fakeForm{values: validBooking()}
	form.values["appointment_date"] = "2001-01-01"
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(&dispatcher.Reply{Status: "ok", Message: "done"}, nil)

	d := dispatcher.New("booking", form, newPresenter(), transport)
	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Success, res.Outcome)
}

func TestSuccessResetsForm(t *testing.T) {
	form := &fakeForm{values: validBooking()}
	presenter := newPresenter()
	transport := new(MockTransport)

	var sent url.Values
	transport.On("Send", mock.Anything, mock.Anything).
		Return(&dispatcher.Reply{Status: "ok", Message: "Booking request received. We will confirm shortly."}, nil).
		Run(func(args mock.Arguments) { sent = args.Get(1).(url.Values) })

	var states []dispatcher.State
	d := dispatcher.New("booking", form, presenter, transport,
		dispatcher.WithSuccessDisplay(3*time.Second),
		dispatcher.WithObserver(func(_, to dispatcher.State) { states = append(states, to) }))

	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Success, res.Outcome)
	assert.Equal(t, 1, form.resets)
	assert.Equal(t, []string{"Booking request received. We will confirm shortly."}, presenter.successes)
	assert.Equal(t, 3*time.Second, presenter.display)
	assert.Equal(t, []bool{true, false}, presenter.busy)
	assert.Equal(t, dispatcher.BusyLabel, presenter.busyLabel)
	assert.Equal(t, []dispatcher.State{
		dispatcher.Validating, dispatcher.Submitting, dispatcher.Success, dispatcher.Idle,
	}, states)

	assert.Equal(t, "booking", sent.Get("form_type"))
	assert.Equal(t, "Asha Rao", sent.Get("name"))
	transport.AssertNumberOfCalls(t, "Send", 1)
}

func TestAcceptedCountsAsSuccess(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(&dispatcher.Reply{Status: "accepted", Message: "Queued"}, nil)

	d := dispatcher.New("booking", &fakeForm{values: validBooking()}, newPresenter(), transport)
	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Success, res.Outcome)
}

func TestServerFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply *dispatcher.Reply
		want  string
	}{
		{"server message", &dispatcher.Reply{Status: "error", Message: "Could not send email at this time."}, "Could not send email at this time."},
		{"itemized errors", &dispatcher.Reply{Status: "error", Message: "Validation failed", Errors: []string{"Date must be today or later."}}, "Date must be today or later."},
		{"no message", &dispatcher.Reply{Status: "error"}, dispatcher.GenericFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := &fakeForm{values: validBooking()}
			presenter := newPresenter()
			transport := new(MockTransport)
			transport.On("Send", mock.Anything, mock.Anything).Return(tt.reply, nil)

			d := dispatcher.New("booking", form, presenter, transport)
			res, err := d.Submit(context.Background())

			require.NoError(t, err)
			assert.Equal(t, dispatcher.Failure, res.Outcome)
			assert.Equal(t, []string{tt.want}, presenter.errors)
			assert.Equal(t, 0, form.resets)
			assert.Equal(t, dispatcher.Idle, d.State())
			assert.Equal(t, []bool{true, false}, presenter.busy)
		})
	}
}

func TestTransportFailureNoRetry(t *testing.T) {
	presenter := newPresenter()
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	d := dispatcher.New("booking", &fakeForm{values: validBooking()}, presenter, transport)
	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Failure, res.Outcome)
	assert.Equal(t, []string{dispatcher.NetworkFailure}, presenter.errors)
	transport.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, dispatcher.Idle, d.State())
}

// blockingTransport holds Send open until released.
type blockingTransport struct {
	entered chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingTransport) Send(ctx context.Context, _ url.Values) (*dispatcher.Reply, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return &dispatcher.Reply{Status: "ok", Message: "done"}, nil
}

func TestSecondSubmitWhileInFlightIsRejected(t *testing.T) {
	transport := &blockingTransport{entered: make(chan struct{}), release: make(chan struct{})}
	d := dispatcher.New("booking", &fakeForm{values: validBooking()}, newPresenter(), transport)

	done := make(chan dispatcher.Result)
	go func() {
		res, _ := d.Submit(context.Background())
		done <- res
	}()
	<-transport.entered

	assert.Equal(t, dispatcher.Submitting, d.State())
	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, dispatcher.ErrSubmissionInFlight)

	close(transport.release)
	assert.Equal(t, dispatcher.Success, (<-done).Outcome)
	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, dispatcher.Idle, d.State())
}

func TestDistinctDispatchersAreIndependent(t *testing.T) {
	transport := &blockingTransport{entered: make(chan struct{}, 2), release: make(chan struct{})}

	career := map[string]string{
		"name":    "Ravi Kumar",
		"phone":   "9876543210",
		"email":   "ravi@example.com",
		"program": "advanced",
	}
	booking := dispatcher.New("booking", &fakeForm{values: validBooking()}, newPresenter(), transport)
	academy := dispatcher.New("career_application", &fakeForm{values: career}, newPresenter(), transport)

	var wg sync.WaitGroup
	for _, d := range []*dispatcher.Dispatcher{booking, academy} {
		wg.Add(1)
		go func(d *dispatcher.Dispatcher) {
			defer wg.Done()
			_, err := d.Submit(context.Background())
			assert.NoError(t, err)
		}(d)
	}

	<-transport.entered
	<-transport.entered
	assert.Equal(t, dispatcher.Submitting, booking.State())
	assert.Equal(t, dispatcher.Submitting, academy.State())

	close(transport.release)
	wg.Wait()
	assert.Equal(t, 2, transport.calls)
}

func TestHTTPTransport(t *testing.T) {
	t.Run("decodes the status payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "Asha Rao", r.PostForm.Get("name"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"error","message":"Validation failed","errors":["Enter a valid email"]}`))
		}))
		defer srv.Close()

		reply, err := dispatcher.NewHTTPTransport(srv.URL, time.Second).
			Send(context.Background(), url.Values{"name": {"Asha Rao"}})

		require.NoError(t, err)
		assert.Equal(t, "error", reply.Status)
		assert.Equal(t, []string{"Enter a valid email"}, reply.Errors)
	})

	t.Run("204 is a discard", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		reply, err := dispatcher.NewHTTPTransport(srv.URL, time.Second).Send(context.Background(), url.Values{})

		require.NoError(t, err)
		assert.True(t, reply.Discarded)
	})

	t.Run("non-JSON body is a generic failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		reply, err := dispatcher.NewHTTPTransport(srv.URL, time.Second).Send(context.Background(), url.Values{})

		require.NoError(t, err)
		assert.False(t, reply.OK())
		assert.Empty(t, reply.Message)
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		_, err := dispatcher.NewHTTPTransport(srv.URL, time.Second).Send(context.Background(), url.Values{})
		assert.Error(t, err)
	})
}

func TestWhitespaceHoneypotStillSubmits(t *testing.T) {
	form := &fakeForm{values: validBooking()}
	form.values["company"] = "  \t"
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(&dispatcher.Reply{Status: "ok", Message: "done"}, nil)

	d := dispatcher.New("booking", form, newPresenter(), transport)
	res, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dispatcher.Success, res.Outcome)
	transport.AssertNumberOfCalls(t, "Send", 1)
}
