package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/colors"
	"github.com/mesh-intelligence/takeoff/internal/paths"
	"github.com/mesh-intelligence/takeoff/internal/plans"
	"github.com/mesh-intelligence/takeoff/internal/registry"
	"github.com/mesh-intelligence/takeoff/pkg/sqlite"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// session is the attached store plus the in-memory services loaded from it.
type session struct {
	store    types.Store
	registry *registry.Registry
	catalog  *colors.Catalog
	plans    *plans.Manager
	logger   *zap.Logger
}

// dataDir resolves the data directory: flag, env, config.yaml, default.
func (a *app) dataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.settings.DataDir)
	if err != nil {
		return "", systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	return dir, nil
}

// open attaches the store and loads every entity into the services. The
// caller must call close.
func (a *app) open() (*session, error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return nil, err
	}
	cfg := types.Config{
		Backend:      a.settings.Backend,
		DataDir:      dataDir,
		SyncStrategy: a.settings.SyncStrategy,
	}
	store := sqlite.NewBackend(a.logger)
	if err := store.Attach(cfg); err != nil {
		return nil, systemError(fmt.Errorf("attach backend: %w", err))
	}

	s := &session{
		store:    store,
		registry: registry.New(registry.WithLogger(a.logger), registry.WithStrictVersionCodes(a.settings.StrictVersionCodes)),
		catalog:  colors.New(colors.WithLogger(a.logger)),
		plans:    plans.New(plans.WithLogger(a.logger)),
		logger:   a.logger,
	}
	if err := s.load(); err != nil {
		_ = store.Detach()
		return nil, systemError(err)
	}

	library := paths.MaterialLibraryFile(a.configDir)
	if err := s.catalog.ImportMaterialLibrary(library); err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("material library not loaded", zap.String("path", library), zap.Error(err))
	}
	return s, nil
}

func (s *session) load() error {
	boundaries, err := s.store.LoadBoundaries()
	if err != nil {
		return fmt.Errorf("load boundaries: %w", err)
	}
	if err := s.registry.Restore(boundaries); err != nil {
		return err
	}

	planList, err := s.store.LoadPlans()
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	if err := s.plans.Restore(planList); err != nil {
		return err
	}

	assignments, err := s.store.LoadAssignments()
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	return s.catalog.Restore(assignments)
}

// save writes every entity back to the store.
func (s *session) save() error {
	if err := s.store.SaveBoundaries(s.registry.Snapshot()); err != nil {
		return systemError(fmt.Errorf("save boundaries: %w", err))
	}
	if err := s.store.SavePlans(s.plans.All()); err != nil {
		return systemError(fmt.Errorf("save plans: %w", err))
	}
	if err := s.store.SaveAssignments(s.catalog.All()); err != nil {
		return systemError(fmt.Errorf("save assignments: %w", err))
	}
	return nil
}

func (s *session) close() error {
	if err := s.store.Detach(); err != nil {
		return systemError(fmt.Errorf("detach backend: %w", err))
	}
	return nil
}

// run opens a session, calls fn and closes the session. When mutate is true
// the state is saved after fn succeeds.
func (a *app) run(mutate bool, fn func(*session) error) (err error) {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()

	if err := fn(s); err != nil {
		return err
	}
	if mutate {
		return s.save()
	}
	return nil
}
