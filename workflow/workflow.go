// Package workflow runs a submission: update the tracked product link, then
// schedule the recurring email, and report one outcome to the UI.
package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kova98/saletracker/enums"
	"github.com/kova98/saletracker/models"
)

var ErrBusy = errors.New("submission already in progress")

// Steps are the two remote calls, issued strictly in order.
type Steps interface {
	UpdateProductLink(ctx context.Context, link string) error
	ScheduleEmail(ctx context.Context, recipientEmail string) (models.ProductSnapshot, error)
}

// Controller is the UI surface a submission drives.
type Controller interface {
	// SetBusy disables the trigger and shows the busy label, or restores it.
	SetBusy(busy bool)
	ShowError(message string)
	ShowSuccess(message string)
	ResetForm()
}

type Options struct {
	DeliveryNote string
	// CallTimeout bounds each remote call. Zero means no timeout beyond ctx.
	CallTimeout time.Duration
	// Registerer receives the workflow metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

type Outcome struct {
	ID      uuid.UUID
	State   enums.State
	Step    enums.Step // failing step, empty on success
	Message string
	Product *models.ProductSnapshot
	Err     error
}

type SubmitWorkflow struct {
	logger       *slog.Logger
	steps        Steps
	ui           Controller
	validate     *validator.Validate
	deliveryNote string
	callTimeout  time.Duration
	metrics      *metrics

	mu    sync.Mutex
	state enums.State
}

func NewSubmitWorkflow(logger *slog.Logger, steps Steps, ui Controller, opts Options) *SubmitWorkflow {
	note := opts.DeliveryNote
	if note == "" {
		note = DefaultDeliveryNote
	}
	return &SubmitWorkflow{
		logger:       logger,
		steps:        steps,
		ui:           ui,
		validate:     validator.New(),
		deliveryNote: note,
		callTimeout:  opts.CallTimeout,
		metrics:      newMetrics(opts.Registerer),
		state:        enums.StateIdle,
	}
}

func (w *SubmitWorkflow) State() enums.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit runs one submission to completion. It returns ErrBusy, without
// touching the UI, when another submission is in flight; every other failure
// is reported to the UI and carried in Outcome.Err.
func (w *SubmitWorkflow) Submit(ctx context.Context, req models.SubmissionRequest) (Outcome, error) {
	if !w.begin() {
		return Outcome{}, ErrBusy
	}

	out := Outcome{ID: uuid.New()}
	logger := w.logger.With("submission", out.ID)
	start := time.Now()
	w.ui.SetBusy(true)
	defer func() {
		w.metrics.observeOutcome(out, time.Since(start))
		w.ui.SetBusy(false)
		w.end()
	}()

	logger.Info("submission started", "link", req.ProductLink)
	w.run(ctx, logger, req, &out)
	return out, nil
}

func (w *SubmitWorkflow) run(ctx context.Context, logger *slog.Logger, req models.SubmissionRequest, out *Outcome) {
	if err := w.validate.Struct(req); err != nil {
		w.fail(logger, out, enums.StepValidate, err, validationMessage(err))
		return
	}

	err := w.call(ctx, enums.StepUpdateProductLink, func(ctx context.Context) error {
		return w.steps.UpdateProductLink(ctx, req.ProductLink)
	})
	if err != nil {
		w.fail(logger, out, enums.StepUpdateProductLink, err, DisplayMessage(err, msgUpdateFailed))
		return
	}

	var product models.ProductSnapshot
	err = w.call(ctx, enums.StepScheduleEmail, func(ctx context.Context) error {
		var err error
		product, err = w.steps.ScheduleEmail(ctx, req.RecipientEmail)
		return err
	})
	if err != nil {
		w.fail(logger, out, enums.StepScheduleEmail, err, DisplayMessage(err, msgScheduleFailed))
		return
	}

	out.State = enums.StateSuccess
	out.Product = &product
	out.Message = FormatSuccess(product, w.deliveryNote)
	w.setState(enums.StateSuccess)
	logger.Info("submission succeeded", "product", product.Name, "price", product.Price, "sale", product.OnSale)

	w.ui.ShowSuccess(out.Message)
	w.ui.ResetForm()
}

func (w *SubmitWorkflow) call(ctx context.Context, step enums.Step, fn func(ctx context.Context) error) error {
	if w.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.callTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	w.metrics.observeCall(step, err, time.Since(start))
	return err
}

func (w *SubmitWorkflow) fail(logger *slog.Logger, out *Outcome, step enums.Step, err error, message string) {
	out.State = enums.StateFailed
	out.Step = step
	out.Err = err
	out.Message = message
	w.setState(enums.StateFailed)
	logger.Warn("submission failed", "step", step, "error", err)

	w.ui.ShowError(message)
}

func (w *SubmitWorkflow) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != enums.StateIdle {
		return false
	}
	w.state = enums.StateSubmitting
	return true
}

func (w *SubmitWorkflow) setState(state enums.State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

func (w *SubmitWorkflow) end() {
	w.setState(enums.StateIdle)
}
