package types

// DefaultElevation is applied to newly attached plans.
const DefaultElevation = "AGS"

// Plan is an attached construction plan (an external reference in the CAD
// host) together with its selected elevation variant.
type Plan struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Path        string            `json:"path"`
	Elevation   string            `json:"elevation" validate:"omitempty,len=3"`
	Loaded      bool              `json:"loaded"`
	Scale       float64           `json:"scale" validate:"gt=0"`
	Rotation    float64           `json:"rotation"`
	InsertPoint Point3D           `json:"insert_point"`
	Properties  map[string]string `json:"properties,omitempty"`
	HostRef     string            `json:"host_ref"`
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() Plan {
	out := *p
	if p.Properties != nil {
		out.Properties = make(map[string]string, len(p.Properties))
		for k, v := range p.Properties {
			out.Properties[k] = v
		}
	}
	return out
}
