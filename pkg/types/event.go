package types

import "time"

// Event kinds published by the registry, catalog and plan manager.
const (
	EventBoundaryCreated     = "boundary.created"
	EventBoundaryDeleted     = "boundary.deleted"
	EventBoundaryActivated   = "boundary.activated"
	EventBoundaryDeactivated = "boundary.deactivated"
	EventOverrideAssigned    = "boundary.override_assigned"
	EventBaseAssigned        = "boundary.base_assigned"
	EventExtentSet           = "boundary.extent_set"
	EventBoundariesRestored  = "boundary.restored"

	EventColorAssigned = "color.assigned"
	EventColorRemoved  = "color.removed"
	EventColorUpdated  = "color.updated"
	EventColorsCleared = "color.cleared"

	EventPlanAttached       = "plan.attached"
	EventPlanDetached       = "plan.detached"
	EventPlanToggled        = "plan.toggled"
	EventElevationApplied   = "plan.elevation_applied"
	EventLayerStateApplied  = "plan.layer_state_applied"
	EventPlanTemplateLoaded = "plan.template_loaded"
)

// AllColors is the Subject of color events that affect every color.
const AllColors = "-1"

// Event describes one state change. Subject names the boundary or plan, or
// holds the decimal color index for color events.
type Event struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}
