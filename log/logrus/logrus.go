package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/resultcache"
)

var _ resultcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l with a "component" field so cache entries are easy to filter.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "resultcache")}
}

func (l Logger) Debug(msg string, f resultcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l Logger) Info(msg string, f resultcache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f resultcache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f resultcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
