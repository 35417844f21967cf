//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBroadcastRun(t *testing.T) {
	t.Run("should split outcomes by result and source", func(t *testing.T) {
		ObserveBroadcastRun("Domains", "EN", false, 7, 2, 1, 3*time.Second)

		if got := testutil.ToFloat64(broadcastRunsTotal.WithLabelValues("domains", "en", "static")); got != 1 {
			t.Errorf("expected 1 static run, got %v", got)
		}
		if got := testutil.ToFloat64(broadcastDeliveriesTotal.WithLabelValues("domains", "en", "success")); got != 7 {
			t.Errorf("expected 7 successes, got %v", got)
		}
		if got := testutil.ToFloat64(broadcastDeliveriesTotal.WithLabelValues("domains", "en", "skipped")); got != 1 {
			t.Errorf("expected 1 skipped, got %v", got)
		}
	})
}

func TestMustRegister(t *testing.T) {
	t.Run("should be idempotent", func(t *testing.T) {
		MustRegister()
		MustRegister()
		if len(collectors) == 0 {
			t.Fatal("expected collectors to be enqueued by init")
		}
	})
}

func TestNorm(t *testing.T) {
	if norm("  OpenAI ") != "openai" {
		t.Errorf("unexpected norm result %q", norm("  OpenAI "))
	}
}
