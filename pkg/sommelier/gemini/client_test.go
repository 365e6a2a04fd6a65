package gemini

import (
	"context"
	"testing"
	"time"
)

func TestTrackFollowsCallerContext(t *testing.T) {
	c := NewClient(Config{APIKey: "test-key"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	streamCtx := c.track(ctx, "req-1")
	select {
	case <-streamCtx.Done():
		t.Fatal("stream context done before anything was cancelled")
	default:
	}

	cancel()
	select {
	case <-streamCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("caller cancellation never reached the stream context")
	}
}

func TestAbandonCancelsTrackedRequest(t *testing.T) {
	c := NewClient(Config{APIKey: "test-key"}, nil, nil)
	streamCtx := c.track(context.Background(), "req-2")

	if err := c.Abandon(context.Background(), "req-2"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	select {
	case <-streamCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("abandon never cancelled the tracked request")
	}
}

func TestAbandonUnknownRequestIsANoOp(t *testing.T) {
	c := NewClient(Config{APIKey: "test-key"}, nil, nil)
	if err := c.Abandon(context.Background(), "never-started"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
}
