// Package expiration runs the background scanner that detects lapsed
// insurance policies. Each newly-lapsed policy gets exactly one warning log
// line; the expiration-logged flag on the policy row is what makes the
// warning one-shot across restarts and repeated cycles.
package expiration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"motorcover/internal/expiration/metrics"
	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
)

// PolicyStore is the slice of the policy store the scanner needs.
type PolicyStore interface {
	ListExpiredUnlogged(ctx context.Context, today domain.Date) ([]*models.InsurancePolicy, error)
	MarkExpirationLogged(ctx context.Context, ids []domain.PolicyID) error
}

// Clock returns the current time; injectable for tests.
type Clock func() time.Time

// Scanner periodically flags policies that lapsed before today.
type Scanner struct {
	policies PolicyStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	clock    Clock
	tracer   trace.Tracer
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Scanner) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Scanner that wakes every interval.
func New(policies PolicyStore, logger *slog.Logger, m *metrics.Metrics,
	interval time.Duration, opts ...Option) (*Scanner, error) {
	if policies == nil {
		return nil, fmt.Errorf("policy store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %s", interval)
	}
	s := &Scanner{
		policies: policies,
		logger:   logger,
		metrics:  m,
		interval: interval,
		clock:    time.Now,
		tracer:   otel.Tracer("motorcover/expiration"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Run scans immediately and then once per interval until ctx is cancelled.
// A failing cycle is logged and abandoned; the next tick is the retry. Run
// only returns the cancellation cause.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "expiration scanner started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.scanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.InfoContext(ctx, "expiration scanner stopped")
				return ctx.Err()
			}
			s.metrics.ScanErrors.Inc()
			s.logger.ErrorContext(ctx, "expiration scan failed", "error", err)
		}
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "expiration scanner stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// scanOnce performs one read-then-write cycle: list policies whose end date
// passed before today and are not yet flagged, warn once per policy, then
// persist all flags in a single batch write. No write happens on an empty
// match set, and none starts once ctx is cancelled.
func (s *Scanner) scanOnce(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "expiration.scan")
	defer span.End()

	today := domain.DateOf(s.clock())
	expired, err := s.policies.ListExpiredUnlogged(ctx, today)
	if err != nil {
		return fmt.Errorf("list expired policies: %w", err)
	}
	if len(expired) == 0 {
		s.metrics.ScanCycles.Inc()
		return nil
	}

	ids := make([]domain.PolicyID, 0, len(expired))
	for _, policy := range expired {
		s.logger.WarnContext(ctx, "policy expired",
			"policy_id", policy.ID,
			"end_date", policy.EndDate,
		)
		s.metrics.PoliciesExpired.Inc()
		ids = append(ids, policy.ID)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.policies.MarkExpirationLogged(ctx, ids); err != nil {
		return fmt.Errorf("mark expiration logged: %w", err)
	}
	s.metrics.ScanCycles.Inc()
	return nil
}
