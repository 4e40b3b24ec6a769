package ledger

import (
	"context"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// actorFrom prefers the request-scoped actor and falls back to the owned
// session context.
func (s *Service) actorFrom(ctx context.Context) domain.Actor {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor
	}
	return s.sess.Actor()
}
