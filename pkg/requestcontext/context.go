// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; controllers and processors read them without
// importing net/http.
//
//	caller := requestcontext.Caller(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "parley/pkg/domain"
)

type (
	callerKey      struct{}
	requestIDKey   struct{}
	clientIPKey    struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyCaller      = callerKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Caller returns the authenticated account address, or the zero Address.
func Caller(ctx context.Context) id.Address {
	if addr, ok := ctx.Value(ContextKeyCaller).(id.Address); ok {
		return addr
	}
	return ""
}

func WithCaller(ctx context.Context, addr id.Address) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, addr)
}

// RequestID is the HTTP correlation id. Not to be confused with a negotiation
// request's id.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for workers, consumers and the CLI.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
