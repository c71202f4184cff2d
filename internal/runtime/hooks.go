package runtime

import (
	"context"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

func (e *Engine) emitNodeEnter(ctx context.Context) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, e.nodeEvent(domain.EventNodeEnter))
}

func (e *Engine) emitNoAnswer(ctx context.Context) {
	if e.hooks.OnNoAnswer == nil {
		return
	}
	e.hooks.OnNoAnswer(ctx, e.nodeEvent(domain.EventNoAnswer))
}

func (e *Engine) emitMatch(ctx context.Context, event *domain.MatchEvent) {
	if e.hooks.OnMatch != nil {
		e.hooks.OnMatch(ctx, event)
	}
}

func (e *Engine) emitFallback(ctx context.Context, event *domain.MatchEvent) {
	if e.hooks.OnFallback != nil {
		e.hooks.OnFallback(ctx, event)
	}
}

func (e *Engine) nodeEvent(t domain.EventType) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t},
		NodeID:    e.current,
		NodeName:  e.graph.Name(e.current),
	}
}
