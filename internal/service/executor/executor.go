package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/internal/integrations/backend"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/messages"
)

const journalTimeout = 3 * time.Second

// Options параметры выполнения действий
type Options struct {
	DriverID string
	Timeout  time.Duration
	// AssumeDefaultStatus подставляет APPROVED/CANCELLED при отсутствии status в ответе.
	// По умолчанию такой ответ считается некорректным.
	AssumeDefaultStatus bool
}

// Result результат действия водителя
type Result struct {
	BookingID string
	Kind      domain.ActionKind
	Outcome   domain.ActionOutcome
	Status    domain.BookingStatus // итоговый статус для OutcomeApplied
	RequestID string
}

// Executor выполняет решения водителя (approve/reject) по одному бронированию.
// По каждому бронированию одновременно выполняется не более одного действия.
type Executor struct {
	client    BackendClient
	store     BookingStore
	refresher Refresher
	notifier  Notifier
	journal   Journal
	metrics   Metrics
	logger    Logger

	driverID            string
	timeout             time.Duration
	assumeDefaultStatus bool
	now                 func() time.Time

	mu      sync.Mutex
	pending map[string]domain.PendingAction
}

// NewExecutor создает новый экземпляр Executor. journal и metrics могут быть nil.
func NewExecutor(
	client BackendClient,
	store BookingStore,
	refresher Refresher,
	notifier Notifier,
	journal Journal,
	metrics Metrics,
	logger Logger,
	opts Options,
) *Executor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultActionTimeout
	}

	return &Executor{
		client:              client,
		store:               store,
		refresher:           refresher,
		notifier:            notifier,
		journal:             journal,
		metrics:             metrics,
		logger:              logger,
		driverID:            opts.DriverID,
		timeout:             opts.Timeout,
		assumeDefaultStatus: opts.AssumeDefaultStatus,
		now:                 time.Now,
		pending:             make(map[string]domain.PendingAction),
	}
}

// Approve подтверждает бронирование водителем
func (e *Executor) Approve(ctx context.Context, bookingID string, confirm Confirmation) (*Result, error) {
	return e.execute(ctx, bookingID, domain.ActionApprove, confirm)
}

// Reject отклоняет бронирование водителем
func (e *Executor) Reject(ctx context.Context, bookingID string, confirm Confirmation) (*Result, error) {
	return e.execute(ctx, bookingID, domain.ActionCancel, confirm)
}

// InFlight возвращает true, если по бронированию выполняется действие
func (e *Executor) InFlight(bookingID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.pending[bookingID]
	return ok
}

// Pending возвращает действия в полёте, отсортированные по времени начала
func (e *Executor) Pending() []domain.PendingAction {
	e.mu.Lock()
	result := make([]domain.PendingAction, 0, len(e.pending))
	for _, p := range e.pending {
		result = append(result, p)
	}
	e.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

func (e *Executor) execute(
	ctx context.Context,
	bookingID string,
	kind domain.ActionKind,
	confirm Confirmation,
) (*Result, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("%w: empty booking id", ErrInvalidInput)
	}
	if confirm == nil {
		return nil, fmt.Errorf("%w: confirmation step is required", ErrInvalidInput)
	}

	booking, ok := e.store.Get(bookingID)
	if !ok {
		e.logger.Warn("Execute: %s booking id=%s not found", kind, bookingID)
		return nil, ErrBookingNotFound
	}
	if !booking.IsActionable() {
		e.logger.Warn("Execute: %s booking id=%s rejected, status=%s", kind, bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotActionable, booking.Status)
	}

	pending, ok := e.acquire(bookingID, kind)
	if !ok {
		e.logger.Warn("Execute: %s booking id=%s rejected, action already in flight", kind, bookingID)
		return nil, ErrActionInFlight
	}

	// опрос мог обновить бронирование между проверкой и захватом блокировки
	booking, ok = e.store.Get(bookingID)
	if !ok || !booking.IsActionable() {
		e.release(bookingID)
		if !ok {
			e.logger.Warn("Execute: %s booking id=%s disappeared before sending", kind, bookingID)
			return nil, ErrBookingNotFound
		}
		e.logger.Warn("Execute: %s booking id=%s became %s before sending", kind, bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotActionable, booking.Status)
	}

	record := &domain.ActionRecord{
		BookingID: bookingID,
		DriverID:  e.driverID,
		Kind:      kind,
		RequestID: pending.RequestID,
		StartedAt: pending.StartedAt,
	}
	var callDuration time.Duration

	// Снятие блокировки выполняется при любом исходе, включая панику
	defer func() {
		e.release(bookingID)
		record.FinishedAt = e.now()
		if record.Outcome == "" {
			record.Outcome = domain.OutcomeFailed
		}
		e.metrics.ObserveAction(string(kind), string(record.Outcome), callDuration)
		e.writeJournal(record)
	}()

	confirmed, err := confirm(ctx, pending)
	if err != nil || !confirmed {
		if err != nil {
			e.logger.Warn("Execute: confirmation for %s booking id=%s failed: %v", kind, bookingID, err)
		}
		e.logger.Info("Execute: %s booking id=%s declined by driver", kind, bookingID)
		record.Outcome = domain.OutcomeDeclined
		return &Result{
			BookingID: bookingID,
			Kind:      kind,
			Outcome:   domain.OutcomeDeclined,
			Status:    booking.Status,
			RequestID: pending.RequestID,
		}, nil
	}

	e.logger.Info("Execute: sending %s for booking id=%s, request_id=%s", kind, bookingID, pending.RequestID)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	callStarted := e.now()
	resp, err := e.call(callCtx, kind, bookingID, pending.RequestID)
	callDuration = e.now().Sub(callStarted)

	var status domain.BookingStatus
	if err == nil {
		status, err = e.resolveStatus(kind, resp)
	}
	if err != nil {
		return nil, e.fail(record, bookingID, kind, err)
	}

	if !e.store.MergeAction(bookingID, resp.ToPatch(status)) {
		e.logger.Warn("Execute: %s booking id=%s succeeded but booking was not merged", kind, bookingID)
	}

	record.Outcome = domain.OutcomeApplied
	record.ResultStatus = &status

	e.logger.Info("Execute: %s booking id=%s succeeded, status=%s", kind, bookingID, status)
	e.notifier.Success(bookingID, messages.ActionSuccess(pastVerb(kind), bookingID))
	e.refresher.RefreshNow()

	return &Result{
		BookingID: bookingID,
		Kind:      kind,
		Outcome:   domain.OutcomeApplied,
		Status:    status,
		RequestID: pending.RequestID,
	}, nil
}

// acquire атомарно проверяет и устанавливает блокировку бронирования
func (e *Executor) acquire(bookingID string, kind domain.ActionKind) (domain.PendingAction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.pending[bookingID]; busy {
		return domain.PendingAction{}, false
	}

	p := domain.PendingAction{
		BookingID: bookingID,
		Kind:      kind,
		RequestID: uuid.NewString(),
		StartedAt: e.now(),
	}
	e.pending[bookingID] = p
	e.metrics.SetActionsInFlight(len(e.pending))

	return p, true
}

func (e *Executor) release(bookingID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.pending, bookingID)
	e.metrics.SetActionsInFlight(len(e.pending))
}

func (e *Executor) call(ctx context.Context, kind domain.ActionKind, bookingID, requestID string) (*backend.ActionResponse, error) {
	if kind == domain.ActionApprove {
		return e.client.Approve(ctx, bookingID, e.driverID, requestID)
	}
	return e.client.Reject(ctx, bookingID, e.driverID, requestID)
}

// resolveStatus определяет итоговый статус из ответа backend
func (e *Executor) resolveStatus(kind domain.ActionKind, resp *backend.ActionResponse) (domain.BookingStatus, error) {
	if resp == nil || resp.Status == nil {
		if e.assumeDefaultStatus {
			return kind.TargetStatus(), nil
		}
		return "", fmt.Errorf("%w: response has no status", backend.ErrMalformedResponse)
	}

	status := domain.BookingStatus(*resp.Status)
	if !status.IsTerminal() {
		return "", fmt.Errorf("%w: unexpected status %q", backend.ErrMalformedResponse, *resp.Status)
	}

	return status, nil
}

func (e *Executor) fail(record *domain.ActionRecord, bookingID string, kind domain.ActionKind, err error) error {
	msg := messages.ActionFailure(verb(kind), bookingID, err)

	record.Outcome = domain.OutcomeFailed
	record.Message = &msg

	e.logger.Error("Execute: %s booking id=%s failed: %v", kind, bookingID, err)
	e.notifier.Failure(bookingID, msg)

	return &ActionError{
		BookingID: bookingID,
		Kind:      kind,
		Message:   msg,
		Err:       err,
	}
}

func (e *Executor) writeJournal(record *domain.ActionRecord) {
	if e.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()

	if err := e.journal.Record(ctx, record); err != nil {
		e.logger.Error("Execute: failed to journal %s booking id=%s: %v", record.Kind, record.BookingID, err)
	}
}

func verb(kind domain.ActionKind) string {
	if kind == domain.ActionApprove {
		return "approve"
	}
	return "reject"
}

func pastVerb(kind domain.ActionKind) string {
	if kind == domain.ActionApprove {
		return "approved"
	}
	return "rejected"
}
