package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRunCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncRun("Completed")
	metrics.IncRun(RunResultFailed)
	metrics.IncRun(RunResultFailed)
	metrics.ObserveRunDuration(250 * time.Millisecond)
	metrics.ObserveRunDuration(-time.Second)
	metrics.IncRunsInFlight()
	metrics.DecRunsInFlight()
	metrics.IncEmail(EmailResultSent)
	metrics.IncEmail(EmailResultFailed)
	metrics.ObserveEmailSendDuration(120 * time.Millisecond)

	if got := testutil.ToFloat64(metrics.runsTotal.WithLabelValues(RunResultCompleted)); got != 1 {
		t.Fatalf("runs_total{completed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RunsTotal(RunResultFailed)); got != 2 {
		t.Fatalf("runs_total{failed} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.runsInflight); got != 0 {
		t.Fatalf("runs_inflight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.EmailsTotal(EmailResultSent)); got != 1 {
		t.Fatalf("emails_total{sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.emailsTotal.WithLabelValues(EmailResultFailed)); got != 1 {
		t.Fatalf("emails_total{failed} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(metrics.runDuration); got != 1 {
		t.Fatalf("run_duration_seconds series = %d, want 1", got)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.IncRun(RunResultCompleted)
	metrics.ObserveRunDuration(time.Second)
	metrics.IncRunsInFlight()
	metrics.DecRunsInFlight()
	metrics.IncEmail(EmailResultSent)
	metrics.ObserveEmailSendDuration(time.Second)

	if metrics.Handler() == nil {
		t.Fatal("Handler() should fall back to the default handler")
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
