package main

import (
	"context"

	"github.com/metalagman/taskcli/internal/command"
	"github.com/metalagman/taskcli/internal/config"
	"github.com/metalagman/taskcli/internal/db"
	"github.com/metalagman/taskcli/internal/lock"
	"github.com/metalagman/taskcli/internal/render"
	"github.com/metalagman/taskcli/internal/task"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// session holds the collaborators of one invocation.
type session struct {
	cfg        config.Config
	store      *task.Store
	dispatcher *command.Dispatcher
	renderer   *render.Renderer
}

// openSession wires config, storage, store, dispatcher and renderer. The
// returned close function releases storage handles.
func openSession(ctx context.Context, cfg config.Config) (*session, func(), error) {
	s := &session{cfg: cfg}
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			newBackend,
			newLocker,
			newStore,
			newDispatcher,
			newRenderer,
		),
		fx.Populate(&s.store, &s.dispatcher, &s.renderer),
	)
	if err := app.Err(); err != nil {
		return nil, func() {}, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if err := app.Stop(context.Background()); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}
	return s, closeFn, nil
}

func newBackend(lc fx.Lifecycle, cfg config.Config) (task.Backend, error) {
	path := cfg.Storage.Path
	log.Debug().Str("driver", cfg.Storage.Driver).Str("path", path).Msg("opening task storage")
	if cfg.Storage.Driver != config.DriverSQLite {
		return task.NewJSONBackend(path), nil
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, &task.IOError{Op: "open", Path: path, Err: err}
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close()
		},
	})
	return db.NewStore(database, path), nil
}

func newLocker(cfg config.Config) task.Locker {
	if !cfg.Storage.Lock {
		return nil
	}
	return lock.NewLocker(cfg.Storage.LockPath(), cfg.Storage.LockTimeout)
}

func newStore(backend task.Backend, locker task.Locker) *task.Store {
	return task.NewStore(backend, task.WithLocker(locker))
}

func newDispatcher(store *task.Store) *command.Dispatcher {
	return command.New(store)
}

func newRenderer(cfg config.Config) (*render.Renderer, error) {
	return render.New(cfg.Output.Format, cfg.Output.Color)
}
