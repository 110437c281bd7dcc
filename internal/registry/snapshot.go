package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Snapshot returns copies of every boundary ordered by name, for persistence.
func (r *Registry) Snapshot() []types.Boundary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Boundary, 0, len(r.boundaries))
	for _, b := range r.boundaries {
		out = append(out, b.Clone())
	}
	sortByName(out)
	return out
}

// Restore replaces the registry contents with the given boundaries. The whole
// set is validated first; on error nothing changes. Strict mode does not
// reject stored overrides outside the component alphabets; they are kept and
// logged so the data can still be repaired.
func (r *Registry) Restore(boundaries []types.Boundary) error {
	next := make(map[string]*types.Boundary, len(boundaries))
	for i := range boundaries {
		b := boundaries[i].Clone()
		if !types.ValidBoundaryName(b.Name) {
			return fmt.Errorf("restore boundary %d: %w", i, types.ErrInvalidName)
		}
		if _, dup := next[b.Name]; dup {
			return fmt.Errorf("restore boundary %q: %w", b.Name, types.ErrDuplicate)
		}
		if r.strict {
			for ch := range b.Overrides {
				if !types.IsKnownComponentChar(ch) {
					r.logger.Warn("restored override outside component alphabets",
						zap.String("boundary", b.Name), zap.Stringer("component", ch))
				}
			}
		}
		next[b.Name] = &b
	}

	r.mu.Lock()
	r.boundaries = next
	r.mu.Unlock()

	r.logger.Debug("boundaries restored", zap.Int("count", len(next)))
	r.hub.Publish(types.EventBoundariesRestored, "", fmt.Sprintf("%d boundaries", len(next)))
	return nil
}
