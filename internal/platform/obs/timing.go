package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	SessionIDKey ctxKey = "session_id"
)

// WithSession tags ctx so timings logged under it carry the page session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// Time logs the duration of op when the returned func is deferred with the op's error.
//
//	defer obs.Time(ctx, "trans.Transform")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	sessionID, _ := ctx.Value(SessionIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s session=%s op=%s dur=%dms err=%v", reqID, sessionID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s session=%s op=%s dur=%dms", reqID, sessionID, name, dur.Milliseconds())
	}
}
