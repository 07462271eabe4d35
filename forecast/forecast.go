// Package forecast projects a daily cumulative series forward with a
// fixed-order ARIMA model.
package forecast

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/arima"
	"github.com/sartorproj/epicast/timeseries"
)

// ErrTagInvalidHorizon marks a horizon below one day.
var ErrTagInvalidHorizon = goerr.NewTag("invalid_horizon")

// Order is the model order used for every forecast.
var Order = arima.Order{P: 5, D: 1, Q: 2}

// Point is one forecast day.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Row is one forecast table row. Count is Value truncated toward zero.
type Row struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// Result holds the forecast days following the input series.
type Result struct {
	Points  []Point
	Summary *arima.Summary
}

// Forecast fits ARIMA(5,1,2) on series and predicts horizon days past its
// last date. Predicted values are returned as-is, negative ones included.
func Forecast(series *timeseries.Series, horizon int) (*Result, error) {
	if horizon < 1 {
		return nil, goerr.New("horizon must be at least one day",
			goerr.V("horizon", horizon),
			goerr.T(ErrTagInvalidHorizon))
	}

	model := arima.New(Order.P, Order.D, Order.Q)
	if err := model.Fit(series); err != nil {
		return nil, goerr.Wrap(err, "failed to fit forecast model")
	}

	values, err := model.Predict(horizon)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to predict", goerr.V("horizon", horizon))
	}

	last, _, _ := series.Last()
	last = timeseries.Truncate(last)
	points := make([]Point, horizon)
	for i, v := range values {
		points[i] = Point{Date: last.AddDate(0, 0, i+1), Value: v}
	}

	return &Result{
		Points:  points,
		Summary: model.Summary(),
	}, nil
}

// Series returns the forecast as a daily series.
func (r *Result) Series() *timeseries.Series {
	s := &timeseries.Series{
		Name:       "forecast",
		Timestamps: make([]time.Time, len(r.Points)),
		Values:     make([]float64, len(r.Points)),
	}
	for i, p := range r.Points {
		s.Timestamps[i] = p.Date
		s.Values[i] = p.Value
	}
	return s
}

// Table returns the forecast rows with integer counts.
func (r *Result) Table() []Row {
	rows := make([]Row, len(r.Points))
	for i, p := range r.Points {
		rows[i] = Row{Date: p.Date, Count: int64(math.Trunc(p.Value))}
	}
	return rows
}
