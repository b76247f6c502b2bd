// Package sessionctx carries the authenticated console session through a
// request context.
package sessionctx

import (
	"context"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

type ctxKey struct{}

func With(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(ctxKey{}).(*domain.Session)
	return s
}

// UserID returns the user of the attached session, or "".
func UserID(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.UserID
	}
	return ""
}
