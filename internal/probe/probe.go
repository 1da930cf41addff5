package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/skarras/circuitguard/circuitbreaker"
	"github.com/skarras/circuitguard/internal/target"
)

// ErrFailed marks a probe outcome that should count against the target's
// circuit breaker. Breakers guarding probed targets are expected to classify
// with this error (see circuitbreaker.FailureIs).
var ErrFailed = errors.New("probe failed")

// Run periodically probes the target through its circuit breaker by sending
// HTTP GET requests to its URL. While the breaker is open, probes are
// skipped without touching the network; the breaker's own recovery window
// decides when the next real probe goes out.
func Run(
	ctx context.Context,
	t *target.Target,
	interval time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) {
	client := &http.Client{
		Timeout: timeout,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Probe stopped",
				slog.String("target", t.Name()))
			return

		case <-ticker.C:
			err := Once(ctx, client, t)

			if errors.Is(err, circuitbreaker.ErrOpen) {
				logger.Debug("Probe skipped, circuit open",
					slog.String("target", t.Name()),
					slog.Int("open_remaining_sec", t.Breaker().OpenRemaining()))
				continue
			}

			healthy := err == nil
			changed := t.SetHealthy(healthy)

			if changed {
				if healthy {
					logger.Info("Target is back up",
						slog.String("target", t.Name()))
				} else {
					logger.Warn("Target is down",
						slog.String("target", t.Name()),
						slog.String("error", err.Error()),
						slog.String("circuit", t.Breaker().State().String()))
				}
			}
		}
	}
}

// Once issues a single guarded probe. Transport errors and 5xx responses
// are wrapped in ErrFailed so the breaker counts them; any other response
// is a success. Returns circuitbreaker.ErrOpen (via *OpenError) when the
// breaker rejected the probe.
func Once(ctx context.Context, client *http.Client, t *target.Target) error {
	_, err := t.Breaker().Call(func() (any, error) {
		return check(ctx, client, t)
	})
	return err
}

func check(ctx context.Context, client *http.Client, t *target.Target) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL().String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	res, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	defer res.Body.Close()

	t.RecordProbe(res.StatusCode, time.Now())

	if res.StatusCode >= http.StatusInternalServerError {
		return res.StatusCode, fmt.Errorf("%w: status %d", ErrFailed, res.StatusCode)
	}

	return res.StatusCode, nil
}
