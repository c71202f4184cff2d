package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "node", e.NodeName)
		},
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.DebugContext(ctx, "match",
				"from", e.From,
				"to", e.To,
				"keyword", e.Keyword,
				"cost", e.Cost,
				"candidates", e.Candidates,
			)
		},
		OnFallback: func(ctx context.Context, e *domain.MatchEvent) {
			logger.DebugContext(ctx, "fallback", "from", e.From, "to", e.To)
		},
		OnNoAnswer: func(ctx context.Context, e *domain.NodeEvent) {
			logger.WarnContext(ctx, "no_answer", "node", e.NodeName)
		},
	}
}

// Chain combines hooks; each event is delivered to every non-nil callback in order.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnNodeEnter = chainNode(out.OnNodeEnter, h.OnNodeEnter)
		out.OnNoAnswer = chainNode(out.OnNoAnswer, h.OnNoAnswer)
		out.OnMatch = chainMatch(out.OnMatch, h.OnMatch)
		out.OnFallback = chainMatch(out.OnFallback, h.OnFallback)
	}
	return out
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainMatch(a, b func(context.Context, *domain.MatchEvent)) func(context.Context, *domain.MatchEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.MatchEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
