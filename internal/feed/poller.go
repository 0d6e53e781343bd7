package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/AviatorPredictor/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNoRounds is returned when the source has no outcomes yet
var ErrNoRounds = errors.New("no rounds available")

// Handler receives a snapshot of the buffer and the outcomes that were just added
type Handler func(ctx context.Context, snapshot, fresh []models.Outcome)

// PollerOptions configures a Poller
type PollerOptions struct {
	Interval       time.Duration
	Limit          int
	MaxElapsedTime time.Duration
}

// Poller periodically pulls outcomes from a Source into a Buffer
type Poller struct {
	source  Source
	buffer  *Buffer
	handler Handler
	opts    PollerOptions
	logger  zerolog.Logger
}

// NewPoller creates a poller. handler may be nil.
func NewPoller(source Source, buffer *Buffer, handler Handler, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = buffer.capacity
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = 30 * time.Second
	}

	return &Poller{
		source:  source,
		buffer:  buffer,
		handler: handler,
		opts:    opts,
		logger:  log.With().Str("component", "poller").Logger(),
	}
}

// Run polls immediately and then on every tick until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.opts.Interval).Int("limit", p.opts.Limit).Msg("Poller started")

	for {
		if _, err := p.Poll(ctx); err != nil {
			switch {
			case errors.Is(err, ErrNoRounds):
				p.logger.Debug().Msg("No rounds yet")
			case ctx.Err() != nil:
			default:
				p.logger.Error().Err(err).Msg("Polling failed")
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll fetches once, retrying transient errors, and returns the number of
// new outcomes. The handler is invoked only when something was added.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	var outcomes []models.Outcome

	operation := func() error {
		var err error
		outcomes, err = p.source.Latest(ctx, p.opts.Limit)
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			return backoff.Permanent(ErrNoRounds)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.opts.MaxElapsedTime

	notify := func(err error, wait time.Duration) {
		p.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Fetching rounds failed, retrying")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		if errors.Is(err, ErrNoRounds) {
			return 0, err
		}
		return 0, fmt.Errorf("fetching rounds: %w", err)
	}

	fresh := p.buffer.Push(outcomes...)
	if len(fresh) == 0 {
		return 0, nil
	}

	p.logger.Debug().Int("new", len(fresh)).Int("buffered", p.buffer.Len()).Msg("New rounds")

	if p.handler != nil {
		p.handler(ctx, p.buffer.Snapshot(), fresh)
	}
	return len(fresh), nil
}
