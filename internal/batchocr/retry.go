package batchocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"scripture/internal/logger"
)

// Defaults for the backoff schedule.
const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = 30 * time.Second
	DefaultMaxJitter  = 10 * time.Second

	// MaxDelay is the ceiling of Delay.
	MaxDelay = time.Duration(math.MaxInt64)
)

// quotaKeywords are matched against the lower-cased error text for errors that
// carry no structured code.
var quotaKeywords = []string{"quota", "limit", "exceeded", "429", "too many"}

// Retrier retries quota failures of the wrapped Submitter with exponential
// backoff. It makes at most MaxRetries+1 attempts.
type Retrier struct {
	Submitter  Submitter
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Jitter returns a value in [0, max). Defaults to a uniform random draw.
	Jitter func(max time.Duration) time.Duration

	log zerolog.Logger
}

// NewRetrier wraps s with the given schedule.
func NewRetrier(s Submitter, maxRetries int, baseDelay, maxJitter time.Duration) *Retrier {
	return &Retrier{
		Submitter:  s,
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxJitter:  maxJitter,
		Sleep:      sleepContext,
		Jitter:     uniformJitter,
		log:        logger.WithComponent("retry"),
	}
}

// Delay returns the wait before retrying after failed attempt n, counted from
// zero: BaseDelay*2^n plus jitter in [0, MaxJitter). The result saturates at
// MaxDelay instead of overflowing.
func (r *Retrier) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	jitter := r.Jitter
	if jitter == nil {
		jitter = uniformJitter
	}

	d := MaxDelay
	if attempt < 63 && r.BaseDelay <= MaxDelay>>attempt {
		d = r.BaseDelay << attempt
	}
	if j := jitter(r.MaxJitter); j > 0 {
		if d > MaxDelay-j {
			return MaxDelay
		}
		d += j
	}
	return d
}

// Submit implements Submitter. It returns nil as soon as one attempt succeeds.
// Errors wrap ErrNonRetryable when the first non-quota failure is seen and
// ErrRetriesExhausted when every attempt hit a quota error.
func (r *Retrier) Submit(ctx context.Context, req *Request) error {
	const op = "Submit"
	log := r.log.With().Str("label", req.Label).Logger()
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	attempts := r.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := r.Submitter.Submit(ctx, req)
		if err == nil {
			if attempt > 0 {
				log.Info().Int("attempt", attempt+1).Msg("Batch submission succeeded after retry")
			}
			return nil
		}

		if !IsRetryable(err) {
			log.Error().Err(err).Int("attempt", attempt+1).Msg("Batch submission failed")
			return NewBatchError(op, req.Label, fmt.Errorf("%w: %w", ErrNonRetryable, err), "")
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		delay := r.Delay(attempt)
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("Quota error, backing off")
		if err := sleep(ctx, delay); err != nil {
			return NewBatchError(op, req.Label, fmt.Errorf("%w: %w", ErrNonRetryable, err), "canceled during backoff")
		}
	}

	log.Error().Err(lastErr).Int("attempts", attempts).Msg("Giving up after quota errors")
	return NewBatchError(op, req.Label, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr), "")
}

// IsRetryable reports whether err is a rate-limit or quota failure. Context
// cancellation and deadline errors are never retryable, even though their text
// contains "exceeded".
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch status.Code(err) {
	case codes.ResourceExhausted:
		return true
	case codes.Canceled, codes.DeadlineExceeded:
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range quotaKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}
