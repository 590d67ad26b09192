package source

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// backoffMultiplier scales the base backoff per error class.
// Rate limiting waits longest, server errors shortest.
func backoffMultiplier(class ErrorClass) float64 {
	switch class {
	case ErrorClassRateLimit:
		return 5
	case ErrorClassNetwork:
		return 2
	default:
		return 1
	}
}

// checkRetry is the retryablehttp.CheckRetry policy: retry server, rate limit
// and network errors, never client errors.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		// Delegates the unrecoverable transport errors (bad scheme, TLS, redirects)
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return shouldRetry(classifyStatus(resp.StatusCode)), nil
}

// backoff is the retryablehttp.Backoff: exponential from min scaled by the
// error class, capped at max, with ±20% jitter. A Retry-After header wins.
func backoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	class := ErrorClassNetwork
	if resp != nil {
		class = classifyStatus(resp.StatusCode)
		if resp.Header.Get("Retry-After") != "" {
			wait := retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
			retriesTotal.WithLabelValues(string(class)).Inc()
			return wait
		}
	}

	wait := time.Duration(float64(min) * backoffMultiplier(class))
	for i := 0; i < attemptNum && wait < max; i++ {
		wait *= 2
	}
	wait = time.Duration(float64(wait) * (0.8 + rand.Float64()*0.4))
	if wait > max {
		wait = max
	}

	retriesTotal.WithLabelValues(string(class)).Inc()
	return wait
}

// retryLogger routes retryablehttp logs into zerolog.
type retryLogger struct {
	logger zerolog.Logger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
