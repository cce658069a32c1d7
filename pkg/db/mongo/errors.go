package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsTransientError reports whether a driver failure looks like a transient
// storage problem (connection loss, timeout) rather than a logical error.
// Callers map these to a SERVICE_UNAVAILABLE error so clients can decide
// on retry policy.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
