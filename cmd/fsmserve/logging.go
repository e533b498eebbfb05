package main

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// NewLogger makes a logger that writes text to w and, if filename
// isn't empty, JSON to that file.
//
// The returned func closes the file.
func NewLogger(w io.Writer, filename string) (*slog.Logger, func() error, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	}
	closer := func() error { return nil }

	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, closer, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// SetLevel sets the level for every logger made by NewLogger.
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}
