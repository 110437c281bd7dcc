// Package plans manages attached construction plans: which plans are loaded,
// which elevation variant each shows and which layer state is current. The
// CAD host performs the actual attachment; this package keeps the records and
// computes the layer data the host applies.
package plans

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/events"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Manager tracks attached plans.
type Manager struct {
	mu               sync.RWMutex
	plans            map[string]*types.Plan
	activeState      string
	filters          map[string][]int
	defaultElevation string
	templatePath     string
	logger           *zap.Logger
	hub              *events.Hub
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a manager with no plans.
func New(opts ...Option) *Manager {
	m := &Manager{
		plans:            make(map[string]*types.Plan),
		filters:          make(map[string][]int),
		defaultElevation: types.DefaultElevation,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.hub = events.NewHub(m.logger)
	return m
}

// Subscribe returns a channel of plan events.
func (m *Manager) Subscribe(buffer int) (<-chan types.Event, func()) {
	return m.hub.Subscribe(buffer)
}

// DefaultElevation is the code given to plans attached without one.
func (m *Manager) DefaultElevation() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultElevation
}

// Attach records a plan. Missing fields get defaults: the default elevation,
// scale 1 and a fresh host reference. The plan starts loaded.
func (m *Manager) Attach(p types.Plan) (types.Plan, error) {
	plan := p.Clone()
	plan.Name = strings.TrimSpace(plan.Name)
	if plan.Scale == 0 {
		plan.Scale = 1
	}
	if plan.HostRef == "" {
		plan.HostRef = newHostRef()
	}
	plan.Loaded = true

	m.mu.Lock()
	if plan.Elevation == "" {
		plan.Elevation = m.defaultElevation
	}
	if err := validatePlan(plan); err != nil {
		m.mu.Unlock()
		return types.Plan{}, err
	}
	if _, exists := m.plans[plan.Name]; exists {
		m.mu.Unlock()
		return types.Plan{}, fmt.Errorf("%w: plan %q", types.ErrDuplicate, plan.Name)
	}
	m.plans[plan.Name] = &plan
	m.mu.Unlock()

	m.logger.Debug("plan attached", zap.String("plan", plan.Name), zap.String("path", plan.Path))
	m.hub.Publish(types.EventPlanAttached, plan.Name, plan.Path)
	return plan.Clone(), nil
}

// Detach forgets a plan.
func (m *Manager) Detach(name string) error {
	m.mu.Lock()
	if _, ok := m.plans[name]; !ok {
		m.mu.Unlock()
		return planNotFound(name)
	}
	delete(m.plans, name)
	m.mu.Unlock()

	m.hub.Publish(types.EventPlanDetached, name, "")
	return nil
}

// Toggle flips a plan between loaded and unloaded and returns the new state.
func (m *Manager) Toggle(name string) (bool, error) {
	m.mu.Lock()
	p, ok := m.plans[name]
	if !ok {
		m.mu.Unlock()
		return false, planNotFound(name)
	}
	p.Loaded = !p.Loaded
	loaded := p.Loaded
	m.mu.Unlock()

	state := "unloaded"
	if loaded {
		state = "loaded"
	}
	m.hub.Publish(types.EventPlanToggled, name, state)
	return loaded, nil
}

// IsLoaded reports whether the plan exists and is loaded.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[name]
	return ok && p.Loaded
}

// ApplyElevation selects the elevation variant shown for a plan and returns
// the layer visibility the host should apply.
func (m *Manager) ApplyElevation(name, code string) (map[string]bool, error) {
	if !ValidElevation(code) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidElevation, code)
	}
	m.mu.Lock()
	p, ok := m.plans[name]
	if !ok {
		m.mu.Unlock()
		return nil, planNotFound(name)
	}
	p.Elevation = code
	m.mu.Unlock()

	m.hub.Publish(types.EventElevationApplied, name, code)
	return LayerVisibility(code), nil
}

// Get returns a copy of the named plan.
func (m *Manager) Get(name string) (types.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[name]
	if !ok {
		return types.Plan{}, planNotFound(name)
	}
	return p.Clone(), nil
}

// All returns copies of every plan ordered by name.
func (m *Manager) All() []types.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b types.Plan) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Restore replaces every plan. All entries are validated first; on error
// nothing changes.
func (m *Manager) Restore(plans []types.Plan) error {
	next := make(map[string]*types.Plan, len(plans))
	for i := range plans {
		p := plans[i].Clone()
		if err := validatePlan(p); err != nil {
			return fmt.Errorf("restore plan %d: %w", i, err)
		}
		if _, dup := next[p.Name]; dup {
			return fmt.Errorf("restore plan %q: %w", p.Name, types.ErrDuplicate)
		}
		next[p.Name] = &p
	}

	m.mu.Lock()
	m.plans = next
	m.mu.Unlock()
	return nil
}

// LayerStates returns the predefined layer states in display order.
func (m *Manager) LayerStates() []LayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LayerState, len(LayerStateNames))
	for i, name := range LayerStateNames {
		out[i] = LayerState{Name: name, Active: name == m.activeState}
	}
	return out
}

// ApplyLayerState makes name the active layer state.
func (m *Manager) ApplyLayerState(name string) error {
	if !slices.Contains(LayerStateNames, name) {
		return fmt.Errorf("%w: layer state %q", types.ErrNotFound, name)
	}
	m.mu.Lock()
	m.activeState = name
	m.mu.Unlock()

	m.hub.Publish(types.EventLayerStateApplied, name, "")
	return nil
}

// ActiveLayerState returns the active layer state, or "" when none is.
func (m *Manager) ActiveLayerState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeState
}

// SetBoundaryFilter records the colors shown for a boundary.
func (m *Manager) SetBoundaryFilter(boundary string, colors []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[boundary] = slices.Clone(colors)
}

// BoundaryFilter returns the colors recorded for a boundary, or nil.
func (m *Manager) BoundaryFilter(boundary string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.filters[boundary])
}

func validatePlan(p types.Plan) error {
	if err := types.ValidateStruct(p); err != nil {
		return err
	}
	if p.Elevation != "" && !ValidElevation(p.Elevation) {
		return fmt.Errorf("%w: %q", types.ErrInvalidElevation, p.Elevation)
	}
	return nil
}

func planNotFound(name string) error {
	return fmt.Errorf("%w: plan %q", types.ErrNotFound, name)
}

// newHostRef generates a UUID v7 standing in for the host's attachment id.
func newHostRef() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
