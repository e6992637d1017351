package handler

import (
	"context"

	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/trial"
)

type accountIDKey struct{}
type accountKey struct{}
type windowKey struct{}

// WithAccountID stores the authenticated account ID in the context.
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// AccountIDFromContext retrieves the authenticated account ID.
func AccountIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(accountIDKey{}).(int64)
	return id
}

// WithAccount stores the loaded account in the context.
func WithAccount(ctx context.Context, a *model.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, a)
}

// AccountFromContext retrieves the loaded account, or nil.
func AccountFromContext(ctx context.Context) *model.Account {
	a, _ := ctx.Value(accountKey{}).(*model.Account)
	return a
}

// WithWindow stores the evaluated access window in the context.
func WithWindow(ctx context.Context, w trial.Window) context.Context {
	return context.WithValue(ctx, windowKey{}, w)
}

// WindowFromContext retrieves the evaluated access window.
func WindowFromContext(ctx context.Context) (trial.Window, bool) {
	w, ok := ctx.Value(windowKey{}).(trial.Window)
	return w, ok
}
