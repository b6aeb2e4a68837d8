package goVerify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []sentCode
	fail  bool
}

type sentCode struct {
	recipient string
	code      string
	locale    string
}

func (n *fakeNotifier) SendCode(_ context.Context, recipient, code, locale string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sends = append(n.sends, sentCode{recipient: recipient, code: code, locale: locale})
	return nil
}

func (n *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sends) == 0 {
		t.Fatal("no code was dispatched")
	}
	return n.sends[len(n.sends)-1].code
}

type fakeDirectory struct {
	mu         sync.Mutex
	confirmed  []string
	attributes map[string]map[string]string
	fail       bool
}

func (d *fakeDirectory) ConfirmAddress(_ context.Context, recipient string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("directory unavailable")
	}
	d.confirmed = append(d.confirmed, recipient)
	return nil
}

func (d *fakeDirectory) SetAttribute(_ context.Context, recipient, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("directory unavailable")
	}
	if d.attributes == nil {
		d.attributes = make(map[string]map[string]string)
	}
	if d.attributes[recipient] == nil {
		d.attributes[recipient] = make(map[string]string)
	}
	d.attributes[recipient][key] = value
	return nil
}

type fakeProfile struct {
	mu      sync.Mutex
	locales map[string]string
	fail    bool
}

func (p *fakeProfile) UpdateLocale(_ context.Context, recipient, locale string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("profile unavailable")
	}
	if p.locales == nil {
		p.locales = make(map[string]string)
	}
	p.locales[recipient] = locale
	return nil
}

type fakeExchanger struct {
	privilegedErr   error
	challengeRef    string
	challengeErr    error
	standardErr     error
	artifacts       *SessionArtifacts
	privilegedCalls int
	challengeCalls  int
	standardCalls   int
}

func (x *fakeExchanger) PrivilegedExchange(_ context.Context, _, _ string) (ExchangeOutcome, error) {
	x.privilegedCalls++
	if x.privilegedErr != nil {
		return ExchangeOutcome{}, x.privilegedErr
	}
	if x.challengeRef != "" {
		return ExchangeOutcome{ChallengeRef: x.challengeRef}, nil
	}
	return ExchangeOutcome{Artifacts: x.artifacts}, nil
}

func (x *fakeExchanger) StandardExchange(_ context.Context, _, _ string) (ExchangeOutcome, error) {
	x.standardCalls++
	if x.standardErr != nil {
		return ExchangeOutcome{}, x.standardErr
	}
	return ExchangeOutcome{Artifacts: x.artifacts}, nil
}

func (x *fakeExchanger) AnswerResetChallenge(_ context.Context, _, _, _ string) (ExchangeOutcome, error) {
	x.challengeCalls++
	if x.challengeErr != nil {
		return ExchangeOutcome{}, x.challengeErr
	}
	return ExchangeOutcome{Artifacts: x.artifacts}, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEngineOptions struct {
	notifier  *fakeNotifier
	directory *fakeDirectory
	profile   *fakeProfile
	exchanger *fakeExchanger
	clock     *testClock
	mutate    func(*Config)
}

func newTestEngine(t *testing.T, rdb *redis.Client, opts testEngineOptions) *Engine {
	t.Helper()

	cfg := defaultConfig()
	if opts.mutate != nil {
		opts.mutate(&cfg)
	}

	engine := &Engine{
		config:   cfg,
		store:    newRecordStore(rdb, cfg.Issue.RedisPrefix),
		throttle: newOpThrottle(rdb, cfg.Throttle, cfg.Issue.RedisPrefix),
		metrics:  NewMetrics(cfg.Metrics),
	}
	if opts.notifier != nil {
		engine.notifier = opts.notifier
	}
	if opts.directory != nil {
		engine.directory = opts.directory
	}
	if opts.profile != nil {
		engine.profile = opts.profile
	}
	if opts.exchanger != nil {
		engine.exchanger = opts.exchanger
	}
	if opts.clock != nil {
		engine.now = opts.clock.Now
	}
	return engine
}
