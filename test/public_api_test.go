package test

import (
	"context"
	"testing"

	goVerify "github.com/galgiade/goVerify"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goVerify.New
	_ = goVerify.DefaultConfig

	var _ *goVerify.Engine
	var _ goVerify.Config
	var _ goVerify.IssueResult
	var _ goVerify.ValidateResult
	var _ goVerify.SessionResult
	var _ goVerify.ValidateOptions
	var _ goVerify.Notifier
	var _ goVerify.Directory
	var _ goVerify.ProfileStore
	var _ goVerify.CredentialExchanger
	var _ goVerify.AuditSink

	var _ error = goVerify.ErrEngineNotReady
	var _ error = goVerify.ErrRecipientInvalid
	var _ error = goVerify.ErrSendRateLimited
	var _ error = goVerify.ErrCodeNotFound
	var _ error = goVerify.ErrCodeExpired
	var _ error = goVerify.ErrCodeMismatch
	var _ error = goVerify.ErrLockedOut
	var _ error = goVerify.ErrStoreUnavailable
	var _ error = goVerify.ErrSessionDisabled

	var _ func(*goVerify.Engine, context.Context, string, string, string) (*goVerify.IssueResult, error) = (*goVerify.Engine).IssueCode
	var _ func(*goVerify.Engine, context.Context, string, string, goVerify.ValidateOptions) (*goVerify.ValidateResult, error) = (*goVerify.Engine).ValidateCode
	var _ func(*goVerify.Engine, context.Context, string, string, string) (*goVerify.SessionResult, error) = (*goVerify.Engine).EstablishSession
	var _ func(*goVerify.Engine, context.Context, string) (int, error) = (*goVerify.Engine).PurgeRecipient

	var _ func(context.Context, string) context.Context = goVerify.WithClientIP
	var _ func(context.Context, string) context.Context = goVerify.WithTenantID
}
