//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	goVerify "github.com/galgiade/goVerify"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// newCountedEngine creates an engine backed by miniredis with a cmdCounter
// hook installed. Reset the counter before each measured operation.
func newCountedEngine(t *testing.T) (*goVerify.Engine, *captureNotifier, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection: go-redis may emit extra commands on first use
	// (handshake, AUTH, SELECT, CLIENT SETNAME, etc.). Issuing a PING
	// before measuring avoids counting that noise.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}
	counter.Reset()

	notifier := newCaptureNotifier()
	engine, err := goVerify.New().
		WithRedis(rdb).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}

	return engine, notifier, counter, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

// TestIssueCodeRedisBudget verifies that an uncontended issuance stays within
// a small fixed number of round-trips: WATCH + index read + record read +
// MULTI/EXEC pipeline.
func TestIssueCodeRedisBudget(t *testing.T) {
	engine, _, counter, cleanup := newCountedEngine(t)
	defer cleanup()

	ctx := context.Background()
	counter.Reset()

	result, err := engine.IssueCode(ctx, "budget@example.com", "", "en")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("expected accepted issuance, got %+v", result)
	}

	cmds := counter.Commands()
	if cmds > 12 {
		t.Errorf("IssueCode used %d Redis commands; budget is <= 12 (WATCH + reads + MULTI/EXEC)", cmds)
	}
	t.Logf("IssueCode: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestValidateCodeRedisBudget verifies that an uncontended successful
// validation stays within a small fixed number of round-trips.
func TestValidateCodeRedisBudget(t *testing.T) {
	engine, notifier, counter, cleanup := newCountedEngine(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := engine.IssueCode(ctx, "budget@example.com", "", "en"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := notifier.codeFor(t, "budget@example.com")

	counter.Reset()

	result, err := engine.ValidateCode(ctx, "budget@example.com", code, goVerify.ValidateOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Verified {
		t.Fatalf("expected verified result, got %+v", result)
	}

	cmds := counter.Commands()
	if cmds > 16 {
		t.Errorf("ValidateCode used %d Redis commands; budget is <= 16 (lookup + WATCH + reads + purge)", cmds)
	}
	t.Logf("ValidateCode: %d commands, %d pipelines", cmds, counter.Pipelines())
}
