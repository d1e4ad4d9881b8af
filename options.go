package sprite

import "log/slog"

// Option configures an Engine.
type Option func(*options)

type options struct {
	vsync         bool
	logger        *slog.Logger
	maxUnits      int
	writeAttempts int
}

const defaultWriteAttempts = 8

func defaultOptions() options {
	return options{
		vsync:         true,
		writeAttempts: defaultWriteAttempts,
	}
}

// WithVSync enables or disables vertical synchronization on every context
// the engine creates. Enabled by default.
func WithVSync(v bool) Option {
	return func(o *options) { o.vsync = v }
}

// WithLogger sets the logger of the engine. By default the package logger
// is used (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxTextureUnits caps the number of texture units used per draw call.
// The backend's queried limit still applies when it is lower.
func WithMaxTextureUnits(n int) Option {
	return func(o *options) { o.maxUnits = n }
}

// WithWriteAttempts bounds how many times a failed instance buffer write is
// retried before the engine panics.
func WithWriteAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.writeAttempts = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}
