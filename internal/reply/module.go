package reply

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/chimein/internal/config"
	"github.com/j0lvera/chimein/internal/db"
)

// Params for creating the reply handler
type Params struct {
	fx.In

	Config   *config.Config
	DBClient *db.Client
	Logger   zerolog.Logger
}

// Result of creating the reply handler
type Result struct {
	fx.Out

	Store   *Store
	Handler *Handler
}

// New wires the store, gate and handler, and bootstraps the schema on start.
// A schema failure aborts startup.
func New(lc fx.Lifecycle, p Params) Result {
	store := NewStore(p.DBClient, p.Logger)
	gate := NewGate(p.Config.ReplyChance)
	handler := NewHandler(store, gate, p.Logger)

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := store.EnsureSchema(ctx); err != nil {
					return err
				}

				count, err := store.Count(ctx)
				if err != nil {
					return err
				}
				if count == 0 {
					p.Logger.Warn().Str("table", Table).Msg("reply table is empty, bot will stay silent")
				}
				p.Logger.Info().
					Int("replies", count).
					Float64("chance", gate.Threshold()).
					Msg("reply store ready")
				return nil
			},
		},
	)

	return Result{
		Store:   store,
		Handler: handler,
	}
}

// Module provides the reply store and handler
func Module() fx.Option {
	return fx.Module(
		"reply",
		fx.Provide(
			New,
		),
	)
}
