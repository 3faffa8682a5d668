package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

// NewCacheChecker проверяет кэш сквозной записью и чтением probe-ключа.
func NewCacheChecker(name string, cache domain.Cache) Checker {
	return CheckerFunc(func() Check {
		start := time.Now()

		key := "health:probe"
		if err := cache.SetWithTTL(key, "ok", time.Minute); err != nil {
			return Check{
				Component:  name,
				Status:     StatusUnhealthy,
				Message:    fmt.Sprintf("probe write failed: %v", err),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
		if _, ok := cache.Get(key); !ok {
			return Check{
				Component:  name,
				Status:     StatusUnhealthy,
				Message:    "probe entry not readable after write",
				DurationMs: time.Since(start).Milliseconds(),
			}
		}

		return Check{
			Component:  name,
			Status:     StatusHealthy,
			DurationMs: time.Since(start).Milliseconds(),
		}
	})
}

// NewUpstreamChecker пингует upstream HEAD-запросом к его базовому URL.
// Upstream недоступен — сервис деградирует (кэш и fallback продолжают
// работать), поэтому статус degraded, а не unhealthy.
func NewUpstreamChecker(name, baseURL string, timeout time.Duration) Checker {
	client := &http.Client{Timeout: timeout}
	return CheckerFunc(func() Check {
		start := time.Now()

		req, err := http.NewRequest(http.MethodHead, baseURL, nil)
		if err != nil {
			return Check{
				Component:  name,
				Status:     StatusUnhealthy,
				Message:    fmt.Sprintf("bad upstream url: %v", err),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return Check{
				Component:  name,
				Status:     StatusDegraded,
				Message:    fmt.Sprintf("upstream unreachable: %v", err),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return Check{
				Component:  name,
				Status:     StatusDegraded,
				Message:    fmt.Sprintf("upstream answered %d", resp.StatusCode),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}

		return Check{
			Component:  name,
			Status:     StatusHealthy,
			DurationMs: time.Since(start).Milliseconds(),
		}
	})
}
