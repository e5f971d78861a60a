package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/compiler"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/gate"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// session is one CLI invocation's dispatcher and gate.
type session struct {
	codex      *compiler.Codex // nil when running on defaults
	matcher    *mirror.Matcher
	dispatcher *dispatch.Dispatcher
	gate       *gate.Gate
	logger     *slog.Logger
}

// newSession loads the configured codex (or the defaults) into fresh
// components. Logs go to logOut: debug level when verbose, warnings
// otherwise.
func newSession(opts *RootOptions, logOut io.Writer) (*session, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	s := &session{matcher: mirror.Default(), logger: logger}
	if opts.Codex != "" {
		res, err := LoadCodex(opts.Codex)
		if err != nil {
			return nil, err
		}
		s.codex = res.Codex
		s.matcher = res.Codex.Matcher()
		logger.Debug("codex loaded", "dir", opts.Codex, "files", res.FileCount)
	}

	sink := effect.NewLogSink(logger)
	s.dispatcher = dispatch.New(
		dispatch.WithMatcher(s.matcher),
		dispatch.WithSink(sink),
		dispatch.WithLogger(logger),
	)

	gopts := []gate.Option{gate.WithSink(sink), gate.WithLogger(logger)}
	if opts.Seed != 0 {
		gopts = append(gopts, gate.WithSeed(opts.Seed))
	}
	s.gate = gate.New(gopts...)

	if s.codex != nil {
		s.codex.Apply(s.dispatcher, s.gate)
	} else {
		s.dispatcher.RegisterDefaults()
		s.gate.RegisterDefaults()
	}
	return s, nil
}

// sessionError reports a failed newSession through f.
func sessionError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = f.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, "failed to load codex", err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load codex", err)
}
