// Package logger wraps logrus with the conventions used across the service:
// every logger is bound to a component name that is attached to each entry.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config controls output level and format.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// Logger is a component-scoped logrus logger.
type Logger struct {
	*logrus.Logger
	component string
}

// New builds a logger for the named component using cfg.
func New(component string, cfg Config) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		base.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Output != nil {
		base.SetOutput(cfg.Output)
	} else {
		base.SetOutput(os.Stdout)
	}

	base.AddHook(componentHook{component: component})
	return &Logger{Logger: base, component: component}
}

// NewDefault returns an info-level JSON logger writing to stdout.
func NewDefault(component string) *Logger {
	return New(component, Config{})
}

// Component reports the name the logger was created with.
func (l *Logger) Component() string {
	return l.component
}

// Named returns a logger sharing output, level and formatter with l but
// tagged with a different component.
func (l *Logger) Named(component string) *Logger {
	child := logrus.New()
	child.SetOutput(l.Out)
	child.SetLevel(l.GetLevel())
	child.SetFormatter(l.Formatter)
	child.AddHook(componentHook{component: component})
	return &Logger{Logger: child, component: component}
}

type componentHook struct {
	component string
}

func (h componentHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h componentHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["component"]; !ok {
		entry.Data["component"] = h.component
	}
	return nil
}
