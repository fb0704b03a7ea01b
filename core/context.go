package core

import (
	"context"

	"github.com/huangsam/storecheck/internal/contract"
)

// Context keys for validation options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	storeManagerKey   contextKey = "storeManager"
)

// WithSuppressHeader suppresses the header and summary lines written to stderr.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithStoreManager attaches the persistence stores used by validation workers.
// Without one, reports are neither cached nor recorded.
func WithStoreManager(ctx context.Context, mgr contract.StoreManager) context.Context {
	return context.WithValue(ctx, storeManagerKey, mgr)
}

// storeManagerFromContext retrieves the store manager from context
func storeManagerFromContext(ctx context.Context) contract.StoreManager {
	mgr, _ := ctx.Value(storeManagerKey).(contract.StoreManager)
	return mgr
}
