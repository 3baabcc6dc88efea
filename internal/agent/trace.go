package agent

import "context"

// turnTrace collects side effects a tool reports back to the conversation
// loop for the current turn. Navigation has to reach the session handler so
// it can schedule the page switch after audio playback finishes.
type turnTrace struct {
	navigated bool
}

type traceKey struct{}

func withTrace(ctx context.Context) (context.Context, *turnTrace) {
	tr := &turnTrace{}
	return context.WithValue(ctx, traceKey{}, tr), tr
}

// markNavigated records that a navigation instruction was sent during this
// turn. It is a no-op outside a conversation loop.
func markNavigated(ctx context.Context) {
	if tr, ok := ctx.Value(traceKey{}).(*turnTrace); ok {
		tr.navigated = true
	}
}
