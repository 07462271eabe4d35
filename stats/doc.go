// Package stats provides statistical helpers for model diagnostics.
//
// ACF computes sample autocorrelations; the ARIMA fitter uses it for its
// Yule-Walker starting point. LjungBox tests fitted residuals for leftover
// autocorrelation:
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	if lb != nil && lb.PValue < 0.05 {
//	    // residuals are still autocorrelated
//	}
package stats
