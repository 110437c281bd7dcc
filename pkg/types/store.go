package types

// Store persists boundaries, plans and color assignments. Attach must be
// called before any other method; after Detach every method returns
// ErrDetached.
type Store interface {
	Attach(config Config) error
	Detach() error

	SaveBoundaries(boundaries []Boundary) error
	LoadBoundaries() ([]Boundary, error)
	BoundariesUsingColor(color int) ([]string, error)

	SavePlans(plans []Plan) error
	LoadPlans() ([]Plan, error)

	SaveAssignments(assignments []ColorAssignment) error
	LoadAssignments() ([]ColorAssignment, error)
}
