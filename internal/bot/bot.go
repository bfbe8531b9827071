package bot

import (
	"context"
	"fmt"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/chimein/internal/config"
	"github.com/j0lvera/chimein/internal/reply"
)

type Params struct {
	fx.In

	Config  *config.Config
	Handler *reply.Handler
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	Bot *tbot.Bot
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	log := p.Logger

	opts := []tbot.Option{
		tbot.WithDefaultHandler(
			func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
				dispatch(ctx, tg, update, p.Handler, &log)
			},
		),
		tbot.WithErrorsHandler(func(err error) {
			log.Error().Err(err).Msg("telegram polling error")
		}),
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return Result{}, err
	}

	var polling *loop

	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				log.Info().Msg("starting telegram bot...")
				polling = startLoop(tg.Start)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				return polling.stop(ctx)
			},
		},
	)

	return Result{Bot: tg}, nil
}

// loop runs a blocking function in the background until stopped.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startLoop(run func(context.Context)) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		run(ctx)
	}()

	return l
}

// stop cancels the loop and waits for run to return, so in-flight handlers
// finish before the pool closes. It gives up when ctx expires.
func (l *loop) stop(ctx context.Context) error {
	l.cancel()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram bot did not stop: %w", ctx.Err())
	}
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}

// dispatch runs the reply handler for one update. Send failures are logged
// here and not retried.
func dispatch(
	ctx context.Context,
	sender reply.Sender,
	update *models.Update,
	handler *reply.Handler,
	log *zerolog.Logger,
) {
	outcome, err := handler.Handle(ctx, sender, update)
	if err != nil {
		event := log.Error().Err(err)
		if update.Message != nil {
			event = event.Int64("chat_id", update.Message.Chat.ID)
		}
		event.Msg("unable to send reply")
		return
	}

	log.Debug().Stringer("outcome", outcome).Msg("update handled")
}
