package commands

import (
	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

const commandsModule = "cjk.commands"

// Mode names how the binary was invoked.
type Mode string

const (
	ModeBook     Mode = "book"
	ModeRaw      Mode = "raw"
	ModeSupports Mode = "supports"
)

// ModeLogger returns the commands logger tagged with the invocation mode.
func ModeLogger(provider interfaces.LoggerProvider, mode Mode) interfaces.Logger {
	return logging.WithFields(logging.ModuleLogger(provider, commandsModule), map[string]any{
		"mode": string(mode),
	})
}
