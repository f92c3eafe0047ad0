package logger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"
)

// fxLogger routes fx lifecycle events to zerolog. Successful wiring is logged at debug level,
// lifecycle milestones at info and failures at error.
type fxLogger struct {
	l zerolog.Logger
}

var _ fxevent.Logger = (*fxLogger)(nil)

func Fx() fxevent.Logger {
	return &fxLogger{
		l: log.Logger.With().Str("component", "fx").Logger(),
	}
}

func (f *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		f.result(e.Err, "fx.hook.start").
			Str("callee", e.FunctionName).
			Str("caller", e.CallerName).
			Dur("runtime", e.Runtime).
			Msg("OnStart hook executed")
	case *fxevent.OnStopExecuted:
		f.result(e.Err, "fx.hook.stop").
			Str("callee", e.FunctionName).
			Str("caller", e.CallerName).
			Dur("runtime", e.Runtime).
			Msg("OnStop hook executed")
	case *fxevent.Supplied:
		f.result(e.Err, "fx.supplied").
			Str("type", e.TypeName).
			Str("module", e.ModuleName).
			Msg("supplied")
	case *fxevent.Provided:
		f.result(e.Err, "fx.provided").
			Str("constructor", e.ConstructorName).
			Str("module", e.ModuleName).
			Str("types", strings.Join(e.OutputTypeNames, ", ")).
			Msg("provided")
	case *fxevent.Invoked:
		f.result(e.Err, "fx.invoked").
			Str("function", e.FunctionName).
			Str("module", e.ModuleName).
			Msg("invoked")
	case *fxevent.Stopping:
		f.l.Info().Str("evt.name", "fx.stopping").Str("signal", strings.ToUpper(e.Signal.String())).Msg("received signal")
	case *fxevent.Stopped:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("evt.name", "fx.stopped").Msg("stop failed")
		}
	case *fxevent.RollingBack:
		f.l.Error().Err(e.StartErr).Str("evt.name", "fx.rollback").Msg("start failed, rolling back")
	case *fxevent.RolledBack:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("evt.name", "fx.rollback").Msg("rollback failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("evt.name", "fx.started").Msg("start failed")
		} else {
			f.l.Info().Str("evt.name", "fx.started").Msg("started")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("evt.name", "fx.logger").Msg("custom logger initialization failed")
		}
	}
}

func (f *fxLogger) result(err error, name string) *zerolog.Event {
	if err != nil {
		return f.l.Error().Err(err).Str("evt.name", name)
	}
	return f.l.Debug().Str("evt.name", name)
}
