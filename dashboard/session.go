package dashboard

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/anomaly"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/metrics"
)

// Selection bounds and defaults.
const (
	MinHorizon     = 7
	MaxHorizon     = 60
	DefaultHorizon = 30
	DefaultRegion  = "India"
)

// Session holds the melted tables of one process run. It is built once
// and only read afterwards, so renders may share it freely.
type Session struct {
	ID       string
	LoadedAt time.Time

	confirmed []dataset.Record
	deaths    []dataset.Record
	regions   []string
	minDate   time.Time
	maxDate   time.Time

	defaultRegion  string
	defaultHorizon int
	threshold      float64
	recorder       metrics.Recorder
}

// Option configures a Session.
type Option func(*Session)

// WithDefaultRegion sets the preferred region of DefaultSelection.
func WithDefaultRegion(region string) Option {
	return func(s *Session) {
		s.defaultRegion = region
	}
}

// WithDefaultHorizon sets the horizon of DefaultSelection.
func WithDefaultHorizon(horizon int) Option {
	return func(s *Session) {
		s.defaultHorizon = horizon
	}
}

// WithThreshold sets the anomaly z-score threshold.
func WithThreshold(threshold float64) Option {
	return func(s *Session) {
		s.threshold = threshold
	}
}

// WithRecorder sets the metrics recorder used by Render.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *Session) {
		s.recorder = recorder
	}
}

// NewSession melts both tables and indexes regions and date bounds from
// the confirmed table.
func NewSession(confirmed, deaths *dataset.WideTable, opts ...Option) (*Session, error) {
	if confirmed == nil || deaths == nil {
		return nil, goerr.New("both confirmed and deaths tables are required")
	}

	confirmedRecords, err := dataset.Melt(confirmed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reshape confirmed table")
	}
	deathsRecords, err := dataset.Melt(deaths)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reshape deaths table")
	}

	minDate, maxDate, ok := dataset.DateBounds(confirmedRecords)
	if !ok {
		return nil, goerr.New("confirmed table has no data",
			goerr.V("rows", len(confirmed.Rows)),
			goerr.V("dates", len(confirmed.Dates)),
			goerr.T(dataset.ErrTagParse))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate session ID")
	}

	s := &Session{
		ID:             id.String(),
		LoadedAt:       time.Now(),
		confirmed:      confirmedRecords,
		deaths:         deathsRecords,
		regions:        dataset.Regions(confirmedRecords),
		minDate:        minDate,
		maxDate:        maxDate,
		defaultRegion:  DefaultRegion,
		defaultHorizon: DefaultHorizon,
		threshold:      anomaly.DefaultThreshold,
		recorder:       metrics.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Regions returns the selectable region names, sorted.
func (s *Session) Regions() []string {
	return slices.Clone(s.regions)
}

// HasRegion reports whether region is selectable.
func (s *Session) HasRegion(region string) bool {
	_, found := slices.BinarySearch(s.regions, region)
	return found
}

// MinDate returns the earliest date in the confirmed table.
func (s *Session) MinDate() time.Time { return s.minDate }

// MaxDate returns the latest date in the confirmed table.
func (s *Session) MaxDate() time.Time { return s.maxDate }

// Threshold returns the anomaly z-score threshold.
func (s *Session) Threshold() float64 { return s.threshold }

// DefaultSelection selects the default region (or the first region when
// it is absent), the default horizon and the full date span.
func (s *Session) DefaultSelection() Selection {
	region := s.defaultRegion
	if !s.HasRegion(region) {
		region = s.regions[0]
	}
	horizon := s.defaultHorizon
	if horizon < MinHorizon || horizon > MaxHorizon {
		horizon = DefaultHorizon
	}
	return Selection{
		Region:  region,
		Start:   s.minDate,
		End:     s.maxDate,
		Horizon: horizon,
	}
}
