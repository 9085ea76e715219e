package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/cfreality/internal/persist"
	"github.com/starford/cfreality/internal/session"
	"github.com/starford/cfreality/internal/storage"
)

// Runtime bundles the store, the persistence pipeline and the session that
// every front end (serve, mcp, tui, one-shot commands) shares.
type Runtime struct {
	Store   storage.Provider
	Adapter *persist.Adapter
	Writer  *persist.Writer
	Session *session.Session

	logger *slog.Logger
}

// NewLogger builds the JSON logger used across the app. nil out means
// stdout. The returned LevelVar changes the level in place.
func NewLogger(out io.Writer, level slog.Level) (*slog.Logger, *slog.LevelVar) {
	if out == nil {
		out = os.Stdout
	}
	lv := new(slog.LevelVar)
	lv.Set(level)
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lv})), lv
}

// Open builds a Runtime from cfg: it opens the configured store, loads the
// persisted state and starts the background writer. Extra session options are
// appended after the defaults.
func Open(cfg *Config, logger *slog.Logger, opts ...session.Option) (*Runtime, error) {
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	adapter := persist.NewAdapter(store, cfg.Storage.Key, logger)
	initial := adapter.Load()
	writer := persist.NewWriter(adapter)

	base := []session.Option{
		session.WithInitial(initial),
		session.WithSaver(writer),
		session.WithLogger(logger),
		session.WithClockTiming(cfg.Clock.Period, cfg.Clock.Step),
	}
	sess := session.New(append(base, opts...)...)

	logger.Info("state loaded",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("key", adapter.Key()),
		slog.Int("insights", len(initial.Insights)))

	return &Runtime{
		Store:   store,
		Adapter: adapter,
		Writer:  writer,
		Session: sess,
		logger:  logger,
	}, nil
}

// Close stops the clock, drains pending writes and closes the store.
func (r *Runtime) Close() error {
	r.Session.Close()
	r.Writer.Close()
	if err := r.Store.Close(); err != nil {
		r.logger.Error("store close failed", slog.String("error", err.Error()))
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
