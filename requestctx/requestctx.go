// Package requestctx carries per-request caller metadata (identity and
// network info) through context.Context so that code deep in the call
// chain - most importantly the audit interceptor - can read it without
// having it threaded through every signature as a separate parameter.
package requestctx

import "context"

// Context is the caller metadata captured at the HTTP boundary.
// All fields are optional; empty string means "not known".
type Context struct {
	UserID    string
	IPAddress string
	UserAgent string
	BranchID  string
}

type ctxKey struct{}

// With returns a derived context carrying rc. Downstream code retrieves it
// via From; concurrent requests each derive their own context, so there is
// no cross-request leakage.
func With(ctx context.Context, rc Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From extracts the caller metadata installed by With. The second return is
// false when no metadata is installed - a normal state for background jobs,
// seeding scripts and anything else running outside an HTTP request.
func From(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	rc, ok := ctx.Value(ctxKey{}).(Context)
	return rc, ok
}

// Run installs rc for the dynamic extent of fn and returns fn's result.
// Handy for background work (cron jobs, migrations) that wants to act
// under a synthetic identity.
func Run(ctx context.Context, rc Context, fn func(context.Context) error) error {
	return fn(With(ctx, rc))
}
