package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const (
	ResultSent   = "sent"
	ResultFailed = "failed"

	defaultAttemptTimeout = 10 * time.Second
	defaultRetryBackoff   = 2 * time.Second
)

// Recorder counts delivery outcomes.
type Recorder interface {
	LeadNotification(result string)
}

type DispatcherOptions struct {
	From           string
	To             string
	Retries        int
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
	Recorder       Recorder
}

// Dispatcher sends lead notifications in the background. Dispatch never
// blocks on delivery and never reports failure to its caller.
type Dispatcher struct {
	sender  Sender
	options DispatcherOptions
	logger  *zap.Logger

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

func NewDispatcher(sender Sender, options DispatcherOptions, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.AttemptTimeout <= 0 {
		options.AttemptTimeout = defaultAttemptTimeout
	}
	if options.RetryBackoff <= 0 {
		options.RetryBackoff = defaultRetryBackoff
	}
	if options.Retries < 0 {
		options.Retries = 0
	}
	return &Dispatcher{sender: sender, options: options, logger: logger.Named("notify")}
}

func (dispatcher *Dispatcher) Dispatch(lead models.Lead) {
	logger := dispatcher.logger.With(zap.String("lead_id", lead.ID))

	msg, err := LeadMessage(lead, dispatcher.options.From, dispatcher.options.To)
	if err != nil {
		logger.Error("lead notification not rendered", zap.Error(err))
		dispatcher.record(ResultFailed)
		return
	}

	dispatcher.mu.Lock()
	if dispatcher.closed {
		dispatcher.mu.Unlock()
		logger.Warn("lead notification dropped after shutdown")
		dispatcher.record(ResultFailed)
		return
	}
	dispatcher.inFlight.Add(1)
	dispatcher.mu.Unlock()

	go func() {
		defer dispatcher.inFlight.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("lead notification panicked", zap.Any("panic", recovered))
				dispatcher.record(ResultFailed)
			}
		}()
		dispatcher.deliver(logger, msg)
	}()
}

func (dispatcher *Dispatcher) deliver(logger *zap.Logger, msg Message) {
	attempts := dispatcher.options.Retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * dispatcher.options.RetryBackoff)
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatcher.options.AttemptTimeout)
		lastErr = dispatcher.sender.Send(ctx, msg)
		cancel()
		if lastErr == nil {
			logger.Info("lead notification sent", zap.Int("attempt", attempt))
			dispatcher.record(ResultSent)
			return
		}
		logger.Warn("lead notification attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
	}

	logger.Error("lead notification failed", zap.Int("attempts", attempts), zap.Error(lastErr))
	dispatcher.record(ResultFailed)
}

// Close stops accepting work and waits for in-flight sends, or for ctx.
func (dispatcher *Dispatcher) Close(ctx context.Context) error {
	dispatcher.mu.Lock()
	dispatcher.closed = true
	dispatcher.mu.Unlock()

	done := make(chan struct{})
	go func() {
		dispatcher.inFlight.Wait()
		close(done)
	}()

	var drainErr error
	select {
	case <-done:
	case <-ctx.Done():
		drainErr = fmt.Errorf("notification drain: %w", ctx.Err())
	}
	// The transport is released even when sends are still outstanding.
	return errors.Join(drainErr, dispatcher.sender.Close())
}

func (dispatcher *Dispatcher) record(result string) {
	if dispatcher.options.Recorder != nil {
		dispatcher.options.Recorder.LeadNotification(result)
	}
}
