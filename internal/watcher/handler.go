package watcher

import "context"

// Handler processes one mature file. A non-nil error leaves the file in place.
type Handler interface {
	Handle(ctx context.Context, path string) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, path string) error

func (f HandlerFunc) Handle(ctx context.Context, path string) error {
	return f(ctx, path)
}
