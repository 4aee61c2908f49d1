package ecs

import "go.uber.org/zap"

const defaultCapacity = 256

// Option configures a Registry or a World.
type Option func(*options)

type options struct {
	log      *zap.Logger
	capacity int
}

func buildOptions(opts []Option) options {
	o := options{
		log:      zap.NewNop(),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCapacity presizes per-type stores and entity arrays.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
