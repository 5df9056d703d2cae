package logger

import (
	"log/slog"

	"github.com/bastiangx/wordoracle/pkg/config"
	"github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewAudit builds the request audit logger. Records go to console and,
// when cfg.File is set, to a rotating JSON file as well.
func NewAudit(cfg config.LogConfig, console *log.Logger) *slog.Logger {
	if console == nil {
		console = New("audit")
	}
	if cfg.File == "" {
		return slog.New(console)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return slog.New(slogmulti.Fanout(
		console,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))
}
