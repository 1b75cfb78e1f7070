package telemetry

import (
	"context"
	"testing"
)

func TestInit_disabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "linkfixer", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
