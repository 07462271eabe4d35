package dashboard

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/timeseries"
)

// ErrTagInvalidSelection marks a selection outside the session's bounds.
var ErrTagInvalidSelection = goerr.NewTag("invalid_selection")

// Selection is the user's choice of region, date window and horizon.
type Selection struct {
	Region  string    `json:"region"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Horizon int       `json:"horizon"`
}

// Complete fills the zero fields of sel from the session's default selection.
func (s *Session) Complete(sel Selection) Selection {
	def := s.DefaultSelection()
	if sel.Region == "" {
		sel.Region = def.Region
	}
	if sel.Start.IsZero() {
		sel.Start = def.Start
	}
	if sel.End.IsZero() {
		sel.End = def.End
	}
	if sel.Horizon == 0 {
		sel.Horizon = def.Horizon
	}
	return sel
}

// Validate checks sel against the session. Dates are compared by calendar day.
func (s *Session) Validate(sel Selection) error {
	if !s.HasRegion(sel.Region) {
		return goerr.New("unknown region",
			goerr.V("region", sel.Region),
			goerr.T(ErrTagInvalidSelection))
	}
	if sel.Horizon < MinHorizon || sel.Horizon > MaxHorizon {
		return goerr.New("horizon out of range",
			goerr.V("horizon", sel.Horizon),
			goerr.V("min", MinHorizon),
			goerr.V("max", MaxHorizon),
			goerr.T(ErrTagInvalidSelection))
	}
	if sel.Start.IsZero() || sel.End.IsZero() {
		return goerr.New("date range is incomplete",
			goerr.V("start", sel.Start),
			goerr.V("end", sel.End),
			goerr.T(ErrTagInvalidSelection))
	}

	start, end := timeseries.Truncate(sel.Start), timeseries.Truncate(sel.End)
	switch {
	case end.Before(start):
		return goerr.New("date range ends before it starts",
			goerr.V("start", start.Format(time.DateOnly)),
			goerr.V("end", end.Format(time.DateOnly)),
			goerr.T(ErrTagInvalidSelection))
	case start.Before(s.minDate) || end.After(s.maxDate):
		return goerr.New("date range is outside the available data",
			goerr.V("start", start.Format(time.DateOnly)),
			goerr.V("end", end.Format(time.DateOnly)),
			goerr.V("min", s.minDate.Format(time.DateOnly)),
			goerr.V("max", s.maxDate.Format(time.DateOnly)),
			goerr.T(ErrTagInvalidSelection))
	}
	return nil
}
