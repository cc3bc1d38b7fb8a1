package provider

import "context"

// Initializable is optionally implemented by providers that need setup
// before handling requests.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup, such as pooled HTTP connections.
// Shutdown paths check for it and call Close().
type Closeable interface {
	Close(ctx context.Context) error
}
