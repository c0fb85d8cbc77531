package workflow

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kova98/saletracker/api"
	"github.com/kova98/saletracker/enums"
	"github.com/kova98/saletracker/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSteps struct {
	mu          sync.Mutex
	calls       []string
	updateErr   error
	scheduleErr error
	product     models.ProductSnapshot
	block       chan struct{}
}

func (f *fakeSteps) UpdateProductLink(ctx context.Context, link string) error {
	f.record("update:" + link)
	if f.block != nil {
		<-f.block
	}
	return f.updateErr
}

func (f *fakeSteps) ScheduleEmail(ctx context.Context, email string) (models.ProductSnapshot, error) {
	f.record("schedule:" + email)
	if f.scheduleErr != nil {
		return models.ProductSnapshot{}, f.scheduleErr
	}
	return f.product, nil
}

func (f *fakeSteps) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSteps) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeUI records controller calls in order.
type fakeUI struct {
	mu     sync.Mutex
	events []string
	busy   bool
	errMsg string
	okMsg  string
	resets int
}

func (u *fakeUI) SetBusy(busy bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.busy = busy
	if busy {
		u.events = append(u.events, "busy")
	} else {
		u.events = append(u.events, "idle")
	}
}

func (u *fakeUI) ShowError(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errMsg = message
	u.events = append(u.events, "error")
}

func (u *fakeUI) ShowSuccess(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.okMsg = message
	u.events = append(u.events, "success")
}

func (u *fakeUI) ResetForm() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.resets++
	u.events = append(u.events, "reset")
}

func (u *fakeUI) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.busy
}

var validRequest = models.SubmissionRequest{
	RecipientEmail: "shopper@example.com",
	ProductLink:    "https://shop.example/p/widget",
}

func newTestWorkflow(steps Steps, ui Controller, reg prometheus.Registerer) *SubmitWorkflow {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSubmitWorkflow(logger, steps, ui, Options{Registerer: reg})
}

func TestSubmit_Success(t *testing.T) {
	steps := &fakeSteps{product: models.ProductSnapshot{Name: "Widget", Price: "19.99", OnSale: true}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	out, err := wf.Submit(context.Background(), validRequest)

	require.NoError(t, err)
	assert.Equal(t, enums.StateSuccess, out.State)
	assert.NotEmpty(t, out.ID)
	require.NotNil(t, out.Product)
	assert.Equal(t, "Widget", out.Product.Name)
	assert.Contains(t, ui.okMsg, "Widget")
	assert.Contains(t, ui.okMsg, "19.99")
	assert.Contains(t, ui.okMsg, "Yes")
	assert.Contains(t, ui.okMsg, DefaultDeliveryNote)
	assert.Equal(t, 1, ui.resets)
	assert.Empty(t, ui.errMsg)
	assert.Equal(t, []string{"busy", "success", "reset", "idle"}, ui.events)
	assert.Equal(t, []string{"update:https://shop.example/p/widget", "schedule:shopper@example.com"}, steps.Calls())
	assert.Equal(t, enums.StateIdle, wf.State())
}

func TestSubmit_UpdateFailureSkipsSchedule(t *testing.T) {
	steps := &fakeSteps{updateErr: &api.ServerError{Status: http.StatusBadRequest, Message: "bad link"}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	out, err := wf.Submit(context.Background(), validRequest)

	require.NoError(t, err)
	assert.Equal(t, enums.StateFailed, out.State)
	assert.Equal(t, enums.StepUpdateProductLink, out.Step)
	assert.Equal(t, "bad link", ui.errMsg)
	assert.Equal(t, []string{"update:https://shop.example/p/widget"}, steps.Calls())
	assert.Zero(t, ui.resets)
	assert.Equal(t, []string{"busy", "error", "idle"}, ui.events)
	assert.False(t, ui.Busy())
}

func TestSubmit_UpdateTransportFailureUsesGenericMessage(t *testing.T) {
	steps := &fakeSteps{updateErr: errors.Wrap(&api.TransportError{Err: errors.New("connection refused")}, "update product link")}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	out, err := wf.Submit(context.Background(), validRequest)

	require.NoError(t, err)
	assert.Equal(t, "Error updating product link", out.Message)
	assert.Equal(t, "Error updating product link", ui.errMsg)
	assert.Len(t, steps.Calls(), 1)
}

func TestSubmit_ScheduleFailure(t *testing.T) {
	steps := &fakeSteps{scheduleErr: &api.ServerError{Status: http.StatusInternalServerError, Message: "mail down"}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	out, err := wf.Submit(context.Background(), validRequest)

	require.NoError(t, err)
	assert.Equal(t, enums.StateFailed, out.State)
	assert.Equal(t, enums.StepScheduleEmail, out.Step)
	assert.Equal(t, "mail down", ui.errMsg)
	assert.Len(t, steps.Calls(), 2)
	assert.Zero(t, ui.resets)
	assert.False(t, ui.Busy())
}

func TestSubmit_ScheduleUnexpectedUsesGenericMessage(t *testing.T) {
	steps := &fakeSteps{scheduleErr: &api.UnexpectedError{Err: errors.New("decode response")}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	wf.Submit(context.Background(), validRequest)

	assert.Equal(t, "Error scheduling email", ui.errMsg)
}

func TestSubmit_InvalidInputMakesNoCalls(t *testing.T) {
	cases := []struct {
		name string
		req  models.SubmissionRequest
		msg  string
	}{
		{"bad email", models.SubmissionRequest{RecipientEmail: "nope", ProductLink: "https://shop.example/p/1"}, "Please enter a valid email address"},
		{"empty email", models.SubmissionRequest{ProductLink: "https://shop.example/p/1"}, "Please enter a valid email address"},
		{"empty link", models.SubmissionRequest{RecipientEmail: "a@b.com", ProductLink: ""}, "Please enter a valid product link"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps := &fakeSteps{}
			ui := &fakeUI{}
			wf := newTestWorkflow(steps, ui, nil)

			out, err := wf.Submit(context.Background(), tc.req)

			require.NoError(t, err)
			assert.Equal(t, enums.StepValidate, out.Step)
			assert.Equal(t, tc.msg, ui.errMsg)
			assert.Empty(t, steps.Calls())
			assert.False(t, ui.Busy())
		})
	}
}

func TestSubmit_LinkWithoutSchemeReachesServer(t *testing.T) {
	steps := &fakeSteps{product: models.ProductSnapshot{Name: "Hoodie", Price: "128.00"}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	out, err := wf.Submit(context.Background(), models.NewSubmissionRequest("a@b.com", " shop.lululemon.com/p/hoodie "))

	require.NoError(t, err)
	assert.Equal(t, enums.StateSuccess, out.State)
	assert.Equal(t, []string{"update:shop.lululemon.com/p/hoodie", "schedule:a@b.com"}, steps.Calls())
}

func TestSubmit_RepeatedFailuresReenableTrigger(t *testing.T) {
	steps := &fakeSteps{updateErr: &api.ServerError{Status: http.StatusBadRequest, Message: "bad link"}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	for i := 0; i < 5; i++ {
		_, err := wf.Submit(context.Background(), validRequest)
		require.NoError(t, err)
		assert.False(t, ui.Busy())
		assert.Equal(t, enums.StateIdle, wf.State())
	}
	assert.Len(t, steps.Calls(), 5)
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	steps := &fakeSteps{block: make(chan struct{}), product: models.ProductSnapshot{Name: "Widget"}}
	ui := &fakeUI{}
	wf := newTestWorkflow(steps, ui, nil)

	done := make(chan Outcome)
	go func() {
		out, _ := wf.Submit(context.Background(), validRequest)
		done <- out
	}()

	require.Eventually(t, func() bool { return len(steps.Calls()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, enums.StateSubmitting, wf.State())
	assert.True(t, ui.Busy())

	_, err := wf.Submit(context.Background(), validRequest)
	assert.ErrorIs(t, err, ErrBusy)

	close(steps.block)
	out := <-done

	assert.Equal(t, enums.StateSuccess, out.State)
	assert.Len(t, steps.Calls(), 2)
	assert.Equal(t, []string{"busy", "success", "reset", "idle"}, ui.events)
}

type panickingUI struct{ fakeUI }

func (u *panickingUI) ShowSuccess(string) { panic("render failed") }

func TestSubmit_ReenablesTriggerOnPanic(t *testing.T) {
	steps := &fakeSteps{}
	ui := &panickingUI{}
	wf := newTestWorkflow(steps, ui, nil)

	assert.Panics(t, func() { wf.Submit(context.Background(), validRequest) })
	assert.False(t, ui.Busy())
	assert.Equal(t, enums.StateIdle, wf.State())
}

type deadlineSteps struct{ fakeSteps }

func (d *deadlineSteps) UpdateProductLink(ctx context.Context, link string) error {
	<-ctx.Done()
	return &api.TransportError{Err: ctx.Err()}
}

func TestSubmit_CallTimeout(t *testing.T) {
	ui := &fakeUI{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wf := NewSubmitWorkflow(logger, &deadlineSteps{}, ui, Options{CallTimeout: 10 * time.Millisecond})

	out, err := wf.Submit(context.Background(), validRequest)

	require.NoError(t, err)
	assert.Equal(t, enums.StepUpdateProductLink, out.Step)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Equal(t, "Error updating product link", ui.errMsg)
}

func TestSubmit_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ui := &fakeUI{}
	wf := newTestWorkflow(&fakeSteps{}, ui, reg)
	failing := newTestWorkflow(&fakeSteps{scheduleErr: errors.New("boom")}, ui, prometheus.NewRegistry())

	wf.Submit(context.Background(), validRequest)
	wf.Submit(context.Background(), validRequest)
	failing.Submit(context.Background(), validRequest)

	assert.Equal(t, 2.0, counterValue(t, wf.metrics.submissions.WithLabelValues("success", "")))
	assert.Equal(t, 1.0, counterValue(t, failing.metrics.submissions.WithLabelValues("failed", "schedule_email")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "saletracker_submissions_total")
	assert.Contains(t, names, "saletracker_api_call_duration_seconds")
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
