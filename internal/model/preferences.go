package model

const (
	DefaultPriorityWeight   = 1.0
	DefaultPreferredMinutes = 60
)

// Preferences is a per-query ranking input. Zero Priority or EstimatedTime means
// "use the engine default".
type Preferences struct {
	Tag           string  `json:"tag"`
	Priority      float64 `json:"priority"`
	EstimatedTime int     `json:"estimated_time"`
}

func DefaultPreferences() Preferences {
	return Preferences{Priority: DefaultPriorityWeight, EstimatedTime: DefaultPreferredMinutes}
}

func (p Preferences) WithDefaults(d Preferences) Preferences {
	out := p
	if out.Priority == 0 {
		out.Priority = d.Priority
	}
	if out.EstimatedTime == 0 {
		out.EstimatedTime = d.EstimatedTime
	}
	return out
}
