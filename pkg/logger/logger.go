package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

func InitLogger(level string, console bool) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
	}

	var logger zerolog.Logger
	if console {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		logger = zerolog.New(consoleWriter).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DefaultContextLogger = &logger
	return &logger
}

func Logger(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
