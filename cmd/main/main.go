package main

import (
	"github.com/j0lvera/chimein/internal/bot"
	"github.com/j0lvera/chimein/internal/config"
	"github.com/j0lvera/chimein/internal/db"
	"github.com/j0lvera/chimein/internal/log"
	"github.com/j0lvera/chimein/internal/reply"
	"go.uber.org/fx"
)

func options() []fx.Option {
	return []fx.Option{
		log.FxLogger(),
		log.Module(),
		config.Module(),
		db.Module(),
		reply.Module(),
		bot.Module(),
	}
}

func main() {

	fx.New(options()...).Run()
}
