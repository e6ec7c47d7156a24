package streamprio

// options holds the resolved configuration for a Scheduler. There is
// deliberately no file, CLI flag, or environment variable surface
// here — this package has no I/O of its own, so the only thing
// worth configuring is how (or whether) it logs.
type options struct {
	logger Logger
}

// Option configures a Scheduler at construction time. The zero value
// of a Scheduler built with no options logs nothing.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger attaches a Logger a Scheduler uses for its trace points
// (open, close, reprioritize, set_active, and each visited leaf
// during Run). Passing nil is equivalent to not calling WithLogger at
// all.
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

func resolveOptions(opts []Option) options {
	ro := options{logger: noopLogger{}}
	for _, o := range opts {
		if o != nil {
			o.apply(&ro)
		}
	}
	if ro.logger == nil {
		ro.logger = noopLogger{}
	}
	return ro
}
