package poller

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/messages"
)

const (
	triggerStart  = "start"
	triggerTick   = "tick"
	triggerManual = "manual"

	resultSuccess   = "success"
	resultFailure   = "failure"
	resultDiscarded = "discarded"

	msgRecovered = "Bookings are up to date again."
)

// Options параметры опроса
type Options struct {
	DriverID     string
	Interval     time.Duration
	FetchTimeout time.Duration
}

// Status состояние опроса для слоя представления
type Status struct {
	Running     bool
	InFlight    bool
	LastSuccess time.Time
	LastError   *PollError
}

// Poller периодически обновляет хранилище полным снимком бронирований водителя.
// Одновременно выполняется не более одного запроса.
type Poller struct {
	fetcher  BookingFetcher
	store    BookingStore
	notifier Notifier
	metrics  Metrics
	logger   Logger

	driverID     string
	interval     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu             sync.Mutex
	running        bool
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	inFlight       bool
	refreshPending bool
	lastErr        *PollError
	lastSuccess    time.Time
}

// New создает новый экземпляр Poller. metrics может быть nil.
func New(
	fetcher BookingFetcher,
	store BookingStore,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
	opts Options,
) *Poller {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if opts.Interval <= 0 {
		opts.Interval = domain.DefaultPollInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = domain.DefaultFetchTimeout
	}

	return &Poller{
		fetcher:      fetcher,
		store:        store,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		driverID:     opts.DriverID,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		now:          time.Now,
	}
}

// Start запускает цикл опроса: один запрос сразу, затем раз в интервал.
// Повторный вызов при запущенном цикле ничего не делает.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// цикл, чей контекст уже отменён, считается остановленным
	if p.running && p.ctx.Err() == nil {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.wg.Add(1)
	go p.loop(p.ctx)

	p.logger.Info("Poller: started for driver=%s, interval=%s", p.driverID, p.interval)
	p.triggerLocked(triggerStart)
}

// Stop останавливает цикл и отменяет запрос в полёте. Безопасен при повторном вызове.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.refreshPending = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Poller: stopped for driver=%s", p.driverID)
}

// RefreshNow запрашивает внеочередное обновление, не сдвигая регулярный интервал.
// После Stop ничего не делает.
func (p *Poller) RefreshNow() {
	p.trigger(triggerManual)
}

// Err возвращает ошибку последнего опроса или nil, если последний опрос был успешным
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastErr == nil {
		return nil
	}
	return p.lastErr
}

// Status возвращает снимок состояния опроса
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Status{
		Running:     p.running,
		InFlight:    p.inFlight,
		LastSuccess: p.lastSuccess,
		LastError:   p.lastErr,
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.teardown(ctx)
			return
		case <-ticker.C:
			p.trigger(triggerTick)
		}
	}
}

// teardown помечает цикл остановленным после отмены родительского контекста.
// Цикл, уже заменённый новым Start, не трогается.
func (p *Poller) teardown(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != ctx || !p.running {
		return
	}
	p.running = false
	p.refreshPending = false
	p.logger.Info("Poller: context cancelled, stopped for driver=%s", p.driverID)
}

func (p *Poller) trigger(kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.ctx.Err() != nil {
		return
	}
	p.triggerLocked(kind)
}

// triggerLocked запускает запрос, если ни одного нет в полёте.
// Плановый тик при запросе в полёте отбрасывается, ручной (и стартовый при
// перезапуске) превращается в один отложенный запрос после текущего.
func (p *Poller) triggerLocked(kind string) {
	if p.inFlight {
		if kind == triggerManual || kind == triggerStart {
			p.refreshPending = true
		}
		p.metrics.IncPollCoalesced(kind)
		p.logger.Debug("Poller: %s trigger coalesced with in-flight fetch", kind)
		return
	}

	p.inFlight = true
	p.wg.Add(1)
	go p.run(p.ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		p.fetchOnce(ctx)

		p.mu.Lock()
		if p.refreshPending && p.running && p.ctx.Err() == nil {
			p.refreshPending = false
			// после перезапуска отложенный запрос относится к новому циклу
			ctx = p.ctx
			p.mu.Unlock()
			continue
		}
		p.inFlight = false
		p.refreshPending = false
		p.mu.Unlock()
		return
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	started := p.now()
	bookings, err := p.fetcher.FetchDriverBookings(fetchCtx, p.driverID)
	elapsed := p.now().Sub(started)

	// Ответ, пришедший после Stop, не применяется
	if ctx.Err() != nil {
		p.metrics.ObservePoll(resultDiscarded, elapsed)
		p.logger.Debug("Poller: discarding fetch result after stop")
		return
	}

	if err != nil {
		p.metrics.ObservePoll(resultFailure, elapsed)
		p.handleFailure(err)
		return
	}

	p.metrics.ObservePoll(resultSuccess, elapsed)
	p.store.ApplyServerUpdate(bookings)

	p.mu.Lock()
	recovered := p.lastErr != nil
	p.lastErr = nil
	p.lastSuccess = p.now()
	p.mu.Unlock()

	p.logger.Debug("Poller: applied snapshot with %d bookings in %s", len(bookings), elapsed)
	if recovered {
		p.logger.Info("Poller: recovered after failure, driver=%s", p.driverID)
		p.notifier.Info("", msgRecovered)
	}
}

func (p *Poller) handleFailure(err error) {
	pollErr := &PollError{
		Err:        err,
		Message:    messages.PollFailure(err),
		OccurredAt: p.now(),
	}

	p.mu.Lock()
	firstInStreak := p.lastErr == nil
	p.lastErr = pollErr
	p.mu.Unlock()

	p.logger.Error("Poller: failed to fetch bookings for driver=%s: %v", p.driverID, err)

	// Уведомляем один раз на серию ошибок, слот ошибки обновляется всегда
	if firstInStreak {
		p.notifier.Failure("", pollErr.Message)
	}
}
