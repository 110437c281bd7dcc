// Package registry owns the boundary records of a takeoff project and
// resolves which colors are visible in a boundary for a given version code.
//
// A Registry is an explicitly constructed object; nothing in the package is
// global. Mutations report failure through sentinel errors from pkg/types and
// leave the state unchanged when they fail. Resolution never fails: a missing
// boundary or a short code resolves to the empty set.
package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/events"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Registry maps boundary names to boundary records.
type Registry struct {
	mu         sync.RWMutex
	boundaries map[string]*types.Boundary
	strict     bool
	logger     *zap.Logger
	hub        *events.Hub
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for mutation and resolution traces.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrictVersionCodes rejects override characters outside every component
// alphabet and resolves codes that fail types.ParseVersionCode to the empty
// set. Off by default: lookups are purely positional.
func WithStrictVersionCodes(strict bool) Option {
	return func(r *Registry) { r.strict = strict }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		boundaries: make(map[string]*types.Boundary),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.hub = events.NewHub(r.logger)
	return r
}

// Strict reports whether version codes are validated.
func (r *Registry) Strict() bool {
	return r.strict
}

// Subscribe returns a channel of change events and a cancel function.
func (r *Registry) Subscribe(buffer int) (<-chan types.Event, func()) {
	return r.hub.Subscribe(buffer)
}

// Create adds an active boundary with empty palettes.
// Returns ErrInvalidName for an empty or overlong name and ErrDuplicate when
// the name is taken.
func (r *Registry) Create(name, planName string) error {
	if !types.ValidBoundaryName(name) {
		return fmt.Errorf("%w: boundary name must be 1-%d characters", types.ErrInvalidName, types.MaxNameLength-1)
	}

	r.mu.Lock()
	if _, exists := r.boundaries[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: boundary %q", types.ErrDuplicate, name)
	}
	r.boundaries[name] = types.NewBoundary(name, planName)
	r.mu.Unlock()

	r.logger.Debug("boundary created", zap.String("boundary", name), zap.String("plan", planName))
	r.hub.Publish(types.EventBoundaryCreated, name, planName)
	return nil
}

// Delete removes a boundary. Returns ErrNotFound if it does not exist.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	if _, ok := r.boundaries[name]; !ok {
		r.mu.Unlock()
		return notFound(name)
	}
	delete(r.boundaries, name)
	r.mu.Unlock()

	r.logger.Debug("boundary deleted", zap.String("boundary", name))
	r.hub.Publish(types.EventBoundaryDeleted, name, "")
	return nil
}

// SetActive moves a boundary between the Active and Inactive states. No other
// boundary is touched. Idempotent for an existing boundary.
func (r *Registry) SetActive(name string, active bool) error {
	err := r.mutate(name, func(b *types.Boundary) error {
		b.Active = active
		return nil
	})
	if err != nil {
		return err
	}
	kind := types.EventBoundaryDeactivated
	if active {
		kind = types.EventBoundaryActivated
	}
	r.hub.Publish(kind, name, "")
	return nil
}

// AssignOverride replaces the override palette for one component character.
// The previous palette for that character is discarded, not merged.
func (r *Registry) AssignOverride(name string, component types.ComponentChar, colors []int) error {
	if r.strict && !types.IsKnownComponentChar(component) {
		return fmt.Errorf("%w: %q", types.ErrInvalidComponent, component)
	}
	err := r.mutate(name, func(b *types.Boundary) error {
		b.Overrides[component] = slices.Clone(colors)
		return nil
	})
	if err != nil {
		return err
	}
	r.hub.Publish(types.EventOverrideAssigned, name, component.String())
	return nil
}

// SetBaseColors replaces the base palette of a boundary.
func (r *Registry) SetBaseColors(name string, colors []int) error {
	err := r.mutate(name, func(b *types.Boundary) error {
		b.BaseColors = slices.Clone(colors)
		if b.BaseColors == nil {
			b.BaseColors = []int{}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.hub.Publish(types.EventBaseAssigned, name, "")
	return nil
}

// SetExtents records the drawing-space extent supplied by the CAD host.
func (r *Registry) SetExtents(name string, minPt, maxPt types.Point3D) error {
	err := r.mutate(name, func(b *types.Boundary) error {
		b.Extent = &types.Extent{Min: minPt, Max: maxPt}
		return nil
	})
	if err != nil {
		return err
	}
	r.hub.Publish(types.EventExtentSet, name, "")
	return nil
}

// Contains reports whether p lies within the boundary's extent. Boundaries
// without an extent contain nothing.
func (r *Registry) Contains(name string, p types.Point3D) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boundaries[name]
	if !ok || b.Extent == nil {
		return false
	}
	return b.Extent.Contains(p)
}

// ResolveColors returns base ∪ override(code[0]) ∪ override(code[1]) ∪
// override(code[2]) for the named boundary. Lookup is strictly positional by
// character. Returns the empty set when the boundary is missing, the code is
// shorter than three characters, or (strict mode) the code is invalid.
func (r *Registry) ResolveColors(name, versionCode string) types.ColorSet {
	if r.strict {
		if _, err := types.ParseVersionCode(versionCode); err != nil {
			r.logger.Debug("version code rejected", zap.String("code", versionCode), zap.Error(err))
			return types.ColorSet{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boundaries[name]
	if !ok {
		return types.ColorSet{}
	}
	return b.Resolve(versionCode)
}

// Diff returns the colors that change visually when switching the boundary
// from version a to version b: the symmetric difference of both resolutions.
func (r *Registry) Diff(name, a, b string) types.ColorSet {
	return r.ResolveColors(name, a).SymmetricDifference(r.ResolveColors(name, b))
}

// Get returns a copy of the named boundary.
func (r *Registry) Get(name string) (types.Boundary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boundaries[name]
	if !ok {
		return types.Boundary{}, notFound(name)
	}
	return b.Clone(), nil
}

// Has reports whether a boundary with that name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.boundaries[name]
	return ok
}

// ListNames returns every boundary name in ascending order.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.boundaries))
	for name := range r.boundaries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ListByPlan returns copies of the boundaries attached to planName, ordered
// by name.
func (r *Registry) ListByPlan(planName string) []types.Boundary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []types.Boundary
	for _, b := range r.boundaries {
		if b.AttachmentPlan == planName {
			out = append(out, b.Clone())
		}
	}
	sortByName(out)
	return out
}

// Len returns the number of boundaries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boundaries)
}

// mutate applies fn to the named boundary under the write lock.
func (r *Registry) mutate(name string, fn func(*types.Boundary) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boundaries[name]
	if !ok {
		return notFound(name)
	}
	return fn(b)
}

func notFound(name string) error {
	return fmt.Errorf("%w: boundary %q", types.ErrNotFound, name)
}

func sortByName(bs []types.Boundary) {
	slices.SortFunc(bs, func(a, b types.Boundary) int {
		return strings.Compare(a.Name, b.Name)
	})
}
