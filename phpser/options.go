package phpser

import (
	"go.uber.org/zap"
)

// Options configures an Encoder.
type Options struct {
	// MaxDepth bounds container nesting; 0 means unlimited.
	// Set it when encoding graphs built from untrusted input.
	MaxDepth int

	// Logger receives malformed-hook notices at Warn level (default: no-op).
	Logger *zap.Logger

	// OnNotice, when set, is called with each *HookNotice.
	OnNotice func(error)
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth: 0,
		Logger:   zap.NewNop(),
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
