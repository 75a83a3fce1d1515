package scheduling

import "github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"

const (
	DefaultDurationMinutes = 60
	DefaultSLAHours        = 24
)

// Override holds caller supplied values; nil or non-positive means unset.
type Override struct {
	DurationMinutes *int
	SLAHours        *int
}

type Resolution struct {
	DurationMinutes int `json:"duration_minutes"`
	SLAHours        int `json:"sla_hours"`
}

// ResolveDurationAndSLA picks each field independently.
// Duration: override, consultation type, 60.
// SLA hours: override, consultation type, package, 24.
func ResolveDurationAndSLA(o Override, ct *model.ConsultationType, pkg *model.PackageOverride) Resolution {
	r := Resolution{DurationMinutes: DefaultDurationMinutes, SLAHours: DefaultSLAHours}

	switch {
	case positive(o.DurationMinutes):
		r.DurationMinutes = *o.DurationMinutes
	case ct != nil && ct.DurationMinutes > 0:
		r.DurationMinutes = ct.DurationMinutes
	}

	switch {
	case positive(o.SLAHours):
		r.SLAHours = *o.SLAHours
	case ct != nil && ct.SLAHours > 0:
		r.SLAHours = ct.SLAHours
	case pkg != nil && positive(pkg.SLAHours):
		r.SLAHours = *pkg.SLAHours
	}
	return r
}

func positive(v *int) bool {
	return v != nil && *v > 0
}
