// Package narrative drafts clinical narratives for routed claims through an LLM adapter.
//
// Drafting runs after routing and outside the router; a failed draft is logged
// and leaves the routing result as it was.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zen-systems/claimroute/pkg/adapter"
	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/config"
	"github.com/zen-systems/claimroute/pkg/router"
)

// ErrEmptyNarrative is returned when every target answered with blank text.
var ErrEmptyNarrative = errors.New("adapter returned an empty narrative")

type target struct {
	adapter adapter.Adapter
	model   string
}

// Drafter generates narratives with retry and adapter fallback.
type Drafter struct {
	targets []target
	retry   config.RetryConfig
	timeout time.Duration
	logger  zerolog.Logger
	sleep   func(context.Context, time.Duration) error
}

// Option configures a Drafter.
type Option func(*Drafter)

// WithLogger sets the logger used for draft warnings and usage events.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Drafter) {
		d.logger = logger.With().Str("component", "narrative").Logger()
	}
}

// New builds a drafter for the configured primary target and fallbacks.
// The primary adapter must be registered; fallbacks without credentials are skipped.
func New(cfg config.NarrativeConfig, adapters adapter.Registry, opts ...Option) (*Drafter, error) {
	d := &Drafter{
		retry:   cfg.Retry,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  zerolog.Nop(),
		sleep:   sleepWithContext,
	}
	for _, opt := range opts {
		opt(d)
	}

	for i, t := range cfg.Targets() {
		a, err := adapters.Get(t.Adapter)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("narrative adapter: %w", err)
			}
			d.logger.Warn().Str("adapter", t.Adapter).Msg("skipping fallback without credentials")
			continue
		}
		d.targets = append(d.targets, target{adapter: a, model: t.Model})
	}
	return d, nil
}

// Draft generates a narrative for the claim. Each target gets its own timeout,
// so a primary that runs out the clock still leaves the fallbacks a full window.
func (d *Drafter) Draft(ctx context.Context, c *claim.Claim, ch router.Characteristics) (string, error) {
	if err := claim.Validate(c); err != nil {
		return "", err
	}

	prompt := BuildPrompt(c, ch)
	var lastErr error

	for idx, t := range d.targets {
		text, err := d.draftWith(ctx, idx, t, c, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no narrative adapter available")
	}
	return "", lastErr
}

// draftWith runs the retry loop against a single target.
func (d *Drafter) draftWith(ctx context.Context, idx int, t target, c *claim.Claim, prompt string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= d.retry.MaxRetries; attempt++ {
		resp, err := t.adapter.Generate(ctx, t.model, prompt)
		if err == nil {
			text := strings.TrimSpace(resp.Text)
			if text == "" {
				return "", ErrEmptyNarrative
			}
			ev := d.logger.Debug().
				Str("claim_id", c.ID).
				Str("adapter", resp.Adapter).
				Str("model", resp.Model).
				Int("retries", attempt).
				Bool("fallback_used", idx > 0)
			if resp.Usage != nil {
				ev = ev.Int("total_tokens", resp.Usage.TotalTokens)
			}
			ev.Msg("narrative drafted")
			return text, nil
		}

		lastErr = err
		if !adapter.IsTransient(err) || attempt == d.retry.MaxRetries || ctx.Err() != nil {
			break
		}
		backoff := computeBackoff(d.retry.BaseBackoffMs, d.retry.MaxBackoffMs, attempt)
		if err := d.sleep(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// Apply replaces the placeholder narrative on the routed copy of the claim.
// It reports whether a drafted narrative was attached. Failures are logged and
// leave the result unchanged.
func (d *Drafter) Apply(ctx context.Context, result *router.RoutingResult) bool {
	if result == nil || !router.HasPlaceholderNarrative(result.OptimizedClaim) {
		return false
	}

	text, err := d.Draft(ctx, result.OptimizedClaim, result.Characteristics)
	if err != nil {
		d.logger.Warn().Err(err).Str("claim_id", result.OptimizedClaim.ID).Msg("narrative draft failed")
		return false
	}

	drafted := result.OptimizedClaim.Clone()
	drafted.Narrative = text
	result.OptimizedClaim = drafted
	return true
}

func computeBackoff(baseMs, maxMs, attempt int) time.Duration {
	backoff := time.Duration(baseMs) * time.Millisecond
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= time.Duration(maxMs)*time.Millisecond {
			return time.Duration(maxMs) * time.Millisecond
		}
	}
	if backoff > time.Duration(maxMs)*time.Millisecond {
		return time.Duration(maxMs) * time.Millisecond
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
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
