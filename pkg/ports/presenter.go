package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// Presenter receives the reply produced after each move.
// It is the outbound half of the presentation collaborator; the inbound half
// is whatever calls Navigate with user text.
type Presenter interface {
	Present(ctx context.Context, reply *domain.Reply) error
}
