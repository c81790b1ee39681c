// Package logging настраивает zerolog для всех режимов запуска.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New создаёт логгер с уровнем level. Неизвестный уровень превращается в info.
// pretty включает человекочитаемый вывод для локального запуска.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter делает то же самое с произвольным приёмником.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
