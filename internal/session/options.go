package session

import (
	"log/slog"

	"lookahead/internal/config"
	"lookahead/internal/lookahead"
)

// LookaheadOptions maps the [lookahead] config section onto scheduler options.
func LookaheadOptions(cfg *config.Config) lookahead.Options {
	l := cfg.Lookahead
	return lookahead.Options{
		SyncLookahead:    l.SyncLookahead,
		ReorderDelay:     l.ReorderDelay,
		KeyintMax:        l.KeyintMax,
		DecisionWindow:   l.DecisionWindow,
		AnalyzeKeyframes: l.AnalyzeKeyframes(),
	}
}

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	logger        *slog.Logger
	classifier    lookahead.Classifier
	replayOf      string
	workerContext lookahead.ContextAllocator
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) { o.logger = logger }
}

// WithClassifier replaces the default pattern classifier.
func WithClassifier(c lookahead.Classifier) Option {
	return func(o *openOptions) { o.classifier = c }
}

// WithReplayOf selects the journaled session replayed when stat_read is set.
// Without it the most recent session is used.
func WithReplayOf(id string) Option {
	return func(o *openOptions) { o.replayOf = id }
}

// WithWorkerContext supplies the worker context allocator for threaded mode.
func WithWorkerContext(alloc lookahead.ContextAllocator) Option {
	return func(o *openOptions) { o.workerContext = alloc }
}
