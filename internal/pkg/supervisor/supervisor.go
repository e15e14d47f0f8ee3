package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrRetriesExhausted = errors.New("retry limit exhausted")

// Task is a unit of work the supervisor can re-run.
type Task func(ctx context.Context) error

type Config struct {
	RetryLimit  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Supervisor runs a task with a bounded number of retries and exponential
// backoff between them. Once the limit is spent, further retries are refused
// without touching the task until Reset is called.
type Supervisor struct {
	name   string
	task   Task
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	attempts int
	lastErr  error
}

func New(name string, task Task, cfg Config, logger *zap.Logger) *Supervisor {
	if cfg.RetryLimit < 0 {
		cfg.RetryLimit = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Supervisor{
		name:   name,
		task:   task,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the task once. Success clears any spent retries.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.task == nil {
		return fmt.Errorf("supervisor %q has no task", s.name)
	}

	err := s.task(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return fmt.Errorf("task %q: %w", s.name, err)
	}
	s.attempts = 0
	s.lastErr = nil
	return nil
}

// Retry re-runs the task after a backoff that doubles with each spent attempt.
// Beyond the retry limit the call is refused and the task is not touched.
func (s *Supervisor) Retry(ctx context.Context) error {
	if s.task == nil {
		return fmt.Errorf("supervisor %q has no task", s.name)
	}

	s.mu.Lock()
	if s.attempts >= s.cfg.RetryLimit {
		attempts := s.attempts
		s.mu.Unlock()
		s.logger.Warn("retry refused, limit exhausted",
			zap.String("task", s.name),
			zap.Int("attempts", attempts),
			zap.Int("retry_limit", s.cfg.RetryLimit),
		)
		return fmt.Errorf("task %q: %w", s.name, ErrRetriesExhausted)
	}
	wait := s.backoffFor(s.attempts)
	s.mu.Unlock()

	if err := sleep(ctx, wait); err != nil {
		return err
	}

	err := s.task(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.attempts++
		s.lastErr = err
		s.logger.Warn("retry failed",
			zap.String("task", s.name),
			zap.Int("attempts", s.attempts),
			zap.Error(err),
		)
		return fmt.Errorf("task %q: %w", s.name, err)
	}
	s.attempts = 0
	s.lastErr = nil
	return nil
}

// Reset returns the supervisor to a fresh state so retries are allowed again.
func (s *Supervisor) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = 0
	s.lastErr = nil
}

func (s *Supervisor) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *Supervisor) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Supervisor) backoffFor(attempt int) time.Duration {
	wait := s.cfg.BaseBackoff
	for i := 0; i < attempt; i++ {
		wait *= 2
		if wait >= s.cfg.MaxBackoff {
			return s.cfg.MaxBackoff
		}
	}
	if wait > s.cfg.MaxBackoff {
		wait = s.cfg.MaxBackoff
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
