package analysis

// DefaultMinutesPerComponent is the review time budgeted per component.
const DefaultMinutesPerComponent = 10

// TimeEstimate is a review-time estimate for a set of components.
type TimeEstimate struct {
	TotalComponents int `json:"totalComponents"`
	Hours           int `json:"hours"`
	Minutes         int `json:"minutes"`
}

// TotalMinutes returns the estimate in minutes.
func (e TimeEstimate) TotalMinutes() int { return e.Hours*60 + e.Minutes }

// Estimate returns components × minutesPerComponent split into hours and
// minutes. A non-positive rate uses DefaultMinutesPerComponent.
func Estimate(components, minutesPerComponent int) TimeEstimate {
	if minutesPerComponent <= 0 {
		minutesPerComponent = DefaultMinutesPerComponent
	}
	if components < 0 {
		components = 0
	}
	total := components * minutesPerComponent
	return TimeEstimate{
		TotalComponents: components,
		Hours:           total / 60,
		Minutes:         total % 60,
	}
}
