package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/resultcache"
)

var _ resultcache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

func (z Logger) Debug(msg string, f resultcache.Fields) { z.emit(z.L.Debug(), msg, f) }
func (z Logger) Info(msg string, f resultcache.Fields)  { z.emit(z.L.Info(), msg, f) }
func (z Logger) Warn(msg string, f resultcache.Fields)  { z.emit(z.L.Warn(), msg, f) }
func (z Logger) Error(msg string, f resultcache.Fields) { z.emit(z.L.Error(), msg, f) }

func (Logger) emit(e *zerolog.Event, msg string, f resultcache.Fields) {
	if e == nil { // level disabled
		return
	}
	for k, v := range f {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
