//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"

	goVerify "github.com/galgiade/goVerify"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// captureNotifier records the last code sent to each recipient.
type captureNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{codes: make(map[string]string)}
}

func (n *captureNotifier) SendCode(_ context.Context, recipient, code, _ string) error {
	n.mu.Lock()
	n.codes[recipient] = code
	n.mu.Unlock()
	return nil
}

func (n *captureNotifier) codeFor(t *testing.T, recipient string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	code, ok := n.codes[recipient]
	if !ok {
		t.Fatalf("no code captured for %s", recipient)
	}
	return code
}

func newIntegrationEngine(t *testing.T, mutate func(*goVerify.Config)) (*goVerify.Engine, *captureNotifier, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goVerify.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	notifier := newCaptureNotifier()
	engine, err := goVerify.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, notifier, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
