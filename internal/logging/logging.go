// Package logging builds the zerolog loggers handed to every component.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Out   io.Writer
	Level string
	// JSON writes raw JSON lines instead of the console format.
	JSON bool
	// File, when set, also receives every line without colors.
	File io.Writer
}

// ParseLevel accepts zerolog level names in any case. Unknown or empty
// names fall back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func New(opts Options) zerolog.Logger {
	var out io.Writer = opts.Out
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: opts.Out, TimeFormat: time.RFC3339}
	}
	if opts.File != nil {
		var file io.Writer = opts.File
		if !opts.JSON {
			file = zerolog.ConsoleWriter{Out: opts.File, TimeFormat: time.RFC3339, NoColor: true}
		}
		out = zerolog.MultiLevelWriter(out, file)
	}
	return zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}
