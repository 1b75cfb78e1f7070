package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	EntriesTotal.WithLabelValues("fixed").Inc()
	ProbesTotal.WithLabelValues("ok").Inc()
	if n, err := testutil.GatherAndCount(reg, "linkfixer_entries_total", "linkfixer_probes_total"); err != nil || n != 2 {
		t.Fatalf("GatherAndCount = %d, %v", n, err)
	}

	// Registering twice on the same registry panics.
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(reg)
}
