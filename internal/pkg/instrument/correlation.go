package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores the request correlation ID in the context.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cID)
}

// GetCorrelationID returns the correlation ID stored in the context, or an
// empty string when none was set.
func GetCorrelationID(ctx context.Context) string {
	val := ctx.Value(correlationIDKey{})
	if val == nil {
		return ""
	}

	cID, ok := val.(string)
	if !ok {
		return "[invalid_chain_id]"
	}

	return cID
}
