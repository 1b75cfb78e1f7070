package httpclient

import (
	"context"
	"testing"
	"time"
)

func TestHostSemaphore_perOrigin(t *testing.T) {
	sem := NewHostSemaphore(1)
	ctx := context.Background()

	release, err := sem.Acquire(ctx, "http://a.example/one.m3u8")
	if err != nil {
		t.Fatal(err)
	}

	// A different origin is not blocked.
	other, err := sem.Acquire(ctx, "http://b.example/one.m3u8")
	if err != nil {
		t.Fatalf("other origin: %v", err)
	}
	other()

	// Same origin, different path, blocks until released.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := sem.Acquire(short, "http://a.example/two.m3u8"); err == nil {
		t.Fatal("expected same-origin acquire to time out")
	}

	release()
	again, err := sem.Acquire(ctx, "http://a.example/two.m3u8")
	if err != nil {
		t.Fatalf("after release: %v", err)
	}
	again()
}

func TestHostSemaphore_nilNeverBlocks(t *testing.T) {
	var sem *HostSemaphore
	release, err := sem.Acquire(context.Background(), "http://a.example/")
	if err != nil {
		t.Fatal(err)
	}
	release()
	if sem.Limit() != 0 {
		t.Errorf("Limit = %d", sem.Limit())
	}
}
