// Package logger configura zerolog para el servicio de stock.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const envDevelopment = "development"

// Config opciones para el logger.
type Config struct {
	Env     string    // "development" escribe en consola, el resto en JSON
	Level   string    // trace, debug, info, warn, error
	Service string    // campo "service" en cada línea
	Output  io.Writer // os.Stdout si es nil
}

// Logger raíz del proceso. Los motores reciben zerolog.Logger por valor vía Component o Zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger raíz y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == envDevelopment {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	fields := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		fields = fields.Str("service", cfg.Service)
	}
	l := &Logger{zl: fields.Logger()}
	log.Logger = l.zl
	return l
}

// ParseLevel acepta los nombres de zerolog sin distinguir mayúsculas; lo desconocido o vacío es info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Component sublogger con el campo "component".
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zl.With().Str("component", name).Logger()
}

func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
