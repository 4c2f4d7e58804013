package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxEmail     contextKey = "email"
	ctxRequestID contextKey = "request_id"
)

// UserIDFromContext returns the account Auth resolved, or "".
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func EmailFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxEmail)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRequestID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
