package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/anomaly"
	"github.com/sartorproj/epicast/arima"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/forecast"
	"github.com/sartorproj/epicast/metrics"
	"github.com/sartorproj/epicast/timeseries"
)

// Point is one dated value of a chart line.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Stats are the latest cumulative counts of the selection.
type Stats struct {
	Confirmed int64  `json:"confirmed"`
	Deaths    *int64 `json:"deaths"` // nil when the deaths table has no data for the selection
}

// ModelSummary describes the fitted forecast model. Criteria that are
// not finite (a perfectly fitted series) are reported as null.
type ModelSummary struct {
	Order     arima.Order `json:"order"`
	AR        []float64   `json:"ar"`
	MA        []float64   `json:"ma"`
	Intercept float64     `json:"intercept"`
	Variance  float64     `json:"variance"`
	AIC       *float64    `json:"aic"`
	AICc      *float64    `json:"aicc"`
	BIC       *float64    `json:"bic"`
	LogLik    *float64    `json:"log_likelihood"`
	NObs      int         `json:"n_obs"`
	LjungBoxQ *float64    `json:"ljung_box_q"`
	LjungBoxP *float64    `json:"ljung_box_p"`
}

// View is everything the dashboard displays for one selection.
type View struct {
	SessionID string             `json:"session_id"`
	Selection Selection          `json:"selection"`
	Stats     Stats              `json:"stats"`
	History   []Point            `json:"history"`
	Forecast  []Point            `json:"forecast"`
	Deltas    []Point            `json:"deltas"`
	Anomalies []anomaly.Flag     `json:"anomalies"`
	Table     []forecast.Row     `json:"table"`
	Threshold float64            `json:"threshold"`
	Model     *ModelSummary      `json:"model"`
	Confirmed *timeseries.Series `json:"-"`
	Daily     *timeseries.Series `json:"-"` // daily new cases
	Predicted *timeseries.Series `json:"-"`
}

// Render runs the pipeline for sel on the shared session. It does not
// modify the session, so concurrent calls are safe.
func Render(ctx context.Context, s *Session, sel Selection) (view *View, err error) {
	logger := ctxlog.From(ctx)
	began := time.Now()
	defer func() {
		s.recorder.ObserveStage(metrics.StageRender, time.Since(began), err)
	}()

	if err := s.Validate(sel); err != nil {
		return nil, err
	}

	var confirmed, deaths *timeseries.Series
	err = s.stage(metrics.StageAggregate, func() error {
		var err error
		if confirmed, err = dataset.Aggregate(s.confirmed, sel.Region, sel.Start, sel.End); err != nil {
			return goerr.Wrap(err, "failed to aggregate confirmed cases", goerr.V("region", sel.Region))
		}
		if deaths, err = dataset.Aggregate(s.deaths, sel.Region, sel.Start, sel.End); err != nil {
			return goerr.Wrap(err, "failed to aggregate deaths", goerr.V("region", sel.Region))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	confirmed.Name = "confirmed"

	var result *forecast.Result
	err = s.stage(metrics.StageForecast, func() error {
		var err error
		result, err = forecast.Forecast(confirmed, sel.Horizon)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to forecast", goerr.V("region", sel.Region))
	}

	var flags []anomaly.Flag
	err = s.stage(metrics.StageAnomaly, func() error {
		var err error
		flags, err = anomaly.Detect(confirmed, s.threshold)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to detect anomalies", goerr.V("region", sel.Region))
	}
	s.recorder.SetAnomalies(len(flags))

	daily := anomaly.Deltas(confirmed)
	predicted := result.Series()

	view = &View{
		SessionID: s.ID,
		Selection: sel,
		History:   toPoints(confirmed),
		Forecast:  toPoints(predicted),
		Deltas:    toPoints(daily),
		Anomalies: flags,
		Table:     result.Table(),
		Threshold: s.threshold,
		Model:     summarize(result.Summary),
		Confirmed: confirmed,
		Daily:     daily,
		Predicted: predicted,
	}
	if view.Anomalies == nil {
		view.Anomalies = []anomaly.Flag{}
	}
	_, latest, _ := confirmed.Last()
	view.Stats.Confirmed = int64(latest)
	if _, d, ok := deaths.Last(); ok {
		count := int64(d)
		view.Stats.Deaths = &count
	}

	logger.Debug("view rendered",
		"session", s.ID,
		"region", sel.Region,
		"days", confirmed.Len(),
		"horizon", sel.Horizon,
		"anomalies", len(flags),
		"duration", time.Since(began),
	)
	return view, nil
}

func (s *Session) stage(name string, fn func() error) error {
	began := time.Now()
	err := fn()
	s.recorder.ObserveStage(name, time.Since(began), err)
	return err
}

func toPoints(series *timeseries.Series) []Point {
	points := make([]Point, series.Len())
	for i := range points {
		points[i] = Point{Date: series.Timestamps[i], Value: series.Values[i]}
	}
	return points
}

func summarize(s *arima.Summary) *ModelSummary {
	if s == nil {
		return nil
	}
	m := &ModelSummary{
		Order:     s.Order,
		AR:        s.ARCoeffs,
		MA:        s.MACoeffs,
		Intercept: s.Intercept,
		Variance:  s.Variance,
		AIC:       finite(s.AIC),
		AICc:      finite(s.AICc),
		BIC:       finite(s.BIC),
		LogLik:    finite(s.LogLik),
		NObs:      s.NObs,
	}
	if s.LjungBox != nil {
		m.LjungBoxQ = finite(s.LjungBox.Statistic)
		m.LjungBoxP = finite(s.LjungBox.PValue)
	}
	return m
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
