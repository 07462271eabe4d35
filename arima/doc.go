// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// Fit differences the series d times, scales the result and estimates the
// coefficients by conditional sum of squares, starting from Yule-Walker
// estimates. Only d = 0 models carry a constant; a differenced model has
// no drift term, so a series that levels off is forecast to stay level.
//
// # Basic Usage
//
//	model := arima.New(5, 1, 2)
//	if err := model.Fit(series); err != nil {
//	    if goerr.HasTag(err, arima.ErrTagModelFit) {
//	        // too short, constant or non-finite series
//	    }
//	    return err
//	}
//	forecasts, _ := model.Predict(30)
//
// # Residual Analysis
//
// Summary reports AIC, AICc, BIC and a Ljung-Box test on the residuals:
//
//	s := model.Summary()
//	if s.LjungBox != nil && s.LjungBox.PValue < 0.05 {
//	    // residuals still autocorrelated
//	}
//
// Forecasts are returned as computed; they are not clamped to any range.
package arima
