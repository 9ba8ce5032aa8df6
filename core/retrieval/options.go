package retrieval

import "log/slog"

// DegradeFunc is called when a retrieval step returns an empty result
// because its store failed
type DegradeFunc func(step string, err error)

// Steps reported to a DegradeFunc
const (
	StepVectorSearch = "vector_search"
	StepGraphSearch  = "graph_search"
)

type retrieverOptions struct {
	logger     *slog.Logger
	onDegraded DegradeFunc
}

// Option configures a retriever
type Option func(*retrieverOptions)

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(o *retrieverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDegradeHook registers a callback for failed retrieval steps
func WithDegradeHook(hook DegradeFunc) Option {
	return func(o *retrieverOptions) {
		o.onDegraded = hook
	}
}

func newRetrieverOptions(opts []Option) retrieverOptions {
	options := retrieverOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func (o retrieverOptions) degrade(step string, err error) {
	o.logger.Warn("Retrieval step degraded", slog.String("step", step), slog.String("error", err.Error()))
	if o.onDegraded != nil {
		o.onDegraded(step, err)
	}
}
