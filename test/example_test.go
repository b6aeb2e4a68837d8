package test

import (
	"context"

	goVerify "github.com/galgiade/goVerify"
	"github.com/galgiade/goVerify/notify/smtp"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	notifier := smtp.New("smtp.example.com", 587, "mailer", "secret", "noreply@example.com")

	engine, _ := goVerify.New().
		WithRedis(rdb).
		WithNotifier(notifier).
		Build()
	_ = engine
}

// ExampleEngine_IssueCode shows a typical issuance call and structured outcome handling.
func ExampleEngine_IssueCode() {
	var engine *goVerify.Engine
	result, err := engine.IssueCode(context.Background(), "alice@example.com", "subject-1", "en")
	if err != nil {
		_ = err
		return
	}
	if !result.Accepted {
		_ = result.ErrorKind
	}
}

// ExampleEngine_ValidateCode shows validation with auto sign-in requested.
func ExampleEngine_ValidateCode() {
	var engine *goVerify.Engine
	result, err := engine.ValidateCode(context.Background(), "alice@example.com", "123456", goVerify.ValidateOptions{
		AutoSignIn: true,
		Credential: "transient-credential",
	})
	if err != nil {
		_ = err
		return
	}
	if result.Verified && result.SessionEstablished {
		_ = result.Session.AccessToken
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goVerify.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
