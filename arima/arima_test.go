package arima_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sartorproj/epicast/arima"
	"github.com/sartorproj/epicast/timeseries"
)

func TestNewARIMA(t *testing.T) {
	model := arima.New(5, 1, 2)

	gt.Equal(t, model.Order, arima.Order{P: 5, D: 1, Q: 2})
	gt.Equal(t, len(model.ARCoeffs), 5)
	gt.Equal(t, len(model.MACoeffs), 2)
	gt.Equal(t, model.MinObservations(), 18)
}

func TestARIMAFitAR1(t *testing.T) {
	n := 200
	phi := 0.7
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		innovation := float64(i%7-3) / 3
		values[i] = phi*(values[i-1]-100) + 100 + innovation
	}

	model := arima.New(1, 0, 0)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	t.Logf("True AR coeff: %f, Estimated: %f", phi, model.ARCoeffs[0])
	gt.True(t, model.ARCoeffs[0] > 0)
	gt.True(t, math.Abs(model.ARCoeffs[0]) <= 0.99)
	gt.Equal(t, len(model.Residuals()), n)
}

func TestARIMAFitWithDifferencing(t *testing.T) {
	n := 200
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + float64(i%5-2)/2
	}

	model := arima.New(1, 1, 0)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	gt.Equal(t, len(model.Residuals()), n-1)
	gt.Equal(t, len(model.FittedValues()), n-1)
	t.Logf("ARIMA(1,1,0) - AIC: %f, BIC: %f", model.AIC, model.BIC)
}

func TestARIMAPredict(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i)/10 + float64(i%7-3)/2
	}

	model := arima.New(5, 1, 2)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	forecasts, err := model.Predict(5)
	gt.NoError(t, err).Required()
	gt.Equal(t, len(forecasts), 5)

	lastValue := values[n-1]
	for i, f := range forecasts {
		gt.False(t, math.IsNaN(f) || math.IsInf(f, 0))
		if math.Abs(f-lastValue) > 50 {
			t.Logf("Forecast %d may be unusual: %f (last value: %f)", i, f, lastValue)
		}
	}
	t.Logf("Last value: %f, Forecasts: %v", lastValue, forecasts)
}

func TestARIMALinearTrendContinuesWithoutDrift(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 100 + 2*float64(i)
	}

	model := arima.New(5, 1, 2)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()
	gt.Equal(t, model.Intercept, 0.0)

	sum := 0.0
	for _, c := range model.ARCoeffs {
		sum += c
	}
	t.Logf("AR coefficients: %v (sum %f)", model.ARCoeffs, sum)
	gt.True(t, math.Abs(sum-1) < 1e-6)

	forecasts, err := model.Predict(3)
	gt.NoError(t, err).Required()
	for i, want := range []float64{300, 302, 304} {
		gt.True(t, math.Abs(forecasts[i]-want) < 1e-6)
	}
}

func TestARIMALevelledSeriesStaysLevel(t *testing.T) {
	values := make([]float64, 0, 300)
	for i := 0; i < 200; i++ {
		values = append(values, 1e6/(1+math.Exp(-float64(i-100)/15)))
	}
	last := values[len(values)-1]
	for i := 0; i < 100; i++ {
		values = append(values, last)
	}

	model := arima.New(5, 1, 2)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	forecasts, err := model.Predict(30)
	gt.NoError(t, err).Required()
	t.Logf("last: %f, forecasts: %f .. %f", last, forecasts[0], forecasts[29])
	for _, f := range forecasts {
		gt.True(t, math.Abs(f-last) < 1)
	}
}

func TestARIMASecondOrderIntegration(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i * i)
	}

	// without a constant the second difference is forecast as zero
	model := arima.New(0, 2, 0)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	forecasts, err := model.Predict(3)
	gt.NoError(t, err).Required()
	gt.Equal(t, forecasts, []float64{898, 955, 1012})
}

func TestARIMAStationaryModelKeepsMean(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 50 + float64(i%7-3)
	}

	model := arima.New(1, 0, 0)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()
	gt.True(t, math.Abs(model.Intercept-50) < 1)
}

func TestARIMADegenerateSeries(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
	}{
		{"too short", []float64{1, 2, 3}},
		{"single point", []float64{42}},
		{"empty", nil},
		{"constant", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}},
		{"non-finite", append(make([]float64, 19), math.NaN())},
		{"infinite", append([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, math.Inf(1))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model := arima.New(5, 1, 2)
			err := model.Fit(timeseries.New(tc.values))
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, arima.ErrTagModelFit))

			_, err = model.Predict(3)
			gt.Error(t, err)
		})
	}
}

func TestARIMAPredictInvalidSteps(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i) + float64(i%3)
	}
	model := arima.New(1, 1, 1)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	_, err := model.Predict(0)
	gt.Error(t, err)
}

func TestARIMASummary(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i%7-3)/2
	}

	model := arima.New(1, 0, 1)
	gt.Equal(t, model.Summary() == nil, true)
	gt.NoError(t, model.Fit(timeseries.New(values))).Required()

	summary := model.Summary()
	if summary == nil {
		t.Fatal("Summary should not be nil")
	}
	gt.Equal(t, summary.NObs, n)
	gt.Equal(t, summary.Order, arima.Order{P: 1, D: 0, Q: 1})

	t.Logf("Summary - AIC: %f, BIC: %f, LogLik: %f", summary.AIC, summary.BIC, summary.LogLik)
	if summary.LjungBox != nil {
		t.Logf("Ljung-Box Q: %f, P-Value: %f", summary.LjungBox.Statistic, summary.LjungBox.PValue)
	}
}

func TestARIMAMultipleOrders(t *testing.T) {
	tests := []struct {
		name    string
		p, d, q int
	}{
		{"AR1", 1, 0, 0},
		{"AR2", 2, 0, 0},
		{"MA1", 0, 0, 1},
		{"MA2", 0, 0, 2},
		{"ARMA11", 1, 0, 1},
		{"ARIMA110", 1, 1, 0},
		{"ARIMA011", 0, 1, 1},
		{"ARIMA111", 1, 1, 1},
		{"ARIMA512", 5, 1, 2},
	}

	n := 150
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 0.6*(values[i-1]-100) + 100 + float64(i%7-3)/3
	}
	series := timeseries.New(values)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := arima.New(tt.p, tt.d, tt.q)
			gt.NoError(t, model.Fit(series)).Required()

			forecasts, err := model.Predict(10)
			gt.NoError(t, err).Required()
			gt.Equal(t, len(forecasts), 10)
			for _, f := range forecasts {
				gt.False(t, math.IsNaN(f) || math.IsInf(f, 0))
			}
			for _, c := range model.ARCoeffs {
				gt.True(t, math.Abs(c) <= 0.99)
			}
			for _, c := range model.MACoeffs {
				gt.True(t, math.Abs(c) <= 0.99)
			}
		})
	}
}
