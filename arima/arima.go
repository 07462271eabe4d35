package arima

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/stats"
	"github.com/sartorproj/epicast/timeseries"
	"gonum.org/v1/gonum/stat"
)

// ErrTagModelFit marks a series the model cannot be estimated on.
var ErrTagModelFit = goerr.NewTag("model_fit")

const (
	coeffBound  = 0.99
	maxIter     = 200
	tolerance   = 1e-9
	minStepSize = 1e-10
	gradEpsilon = 1e-6
)

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int `json:"p"` // AR order (number of autoregressive terms)
	D int `json:"d"` // Differencing order
	Q int `json:"q"` // MA order (number of moving average terms)
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi), on the scaled differenced series
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64   // mean of the series when D == 0; always 0 when D > 0
	Scale     float64   // standard deviation when D == 0, root mean square when D > 0
	Variance  float64   // Residual variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	fitted     bool
	data       *timeseries.Series
	levels     []float64 // last value of the series after 0..D-1 differences
	z          []float64 // standardized differenced series
	innov      []float64 // standardized residuals
	residuals  []float64
	fittedVals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// MinObservations is the shortest series Fit accepts for this order.
func (m *Model) MinObservations() int {
	return m.Order.P + m.Order.D + m.Order.Q + 10
}

// Fit fits the ARIMA model to the given time series data using
// conditional sum of squares on the standardized differenced series.
func (m *Model) Fit(series *timeseries.Series) error {
	if series == nil || series.Len() < m.MinObservations() {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return goerr.New("insufficient data points for the specified order",
			goerr.V("observations", n),
			goerr.V("required", m.MinObservations()),
			goerr.T(ErrTagModelFit))
	}
	if series.HasNonFinite() {
		return goerr.New("series contains non-finite values", goerr.T(ErrTagModelFit))
	}
	if series.IsConstant() {
		return goerr.New("series is constant", goerr.V("value", series.Values[0]), goerr.T(ErrTagModelFit))
	}

	m.fitted = false
	m.data = series
	m.levels = make([]float64, m.Order.D)

	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		m.levels[i] = diffSeries.Values[diffSeries.Len()-1]
		diffSeries = diffSeries.Diff()
	}

	m.fitCSS(diffSeries.Values)

	for _, c := range append(append([]float64{}, m.ARCoeffs...), m.MACoeffs...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return goerr.New("coefficient estimation diverged", goerr.T(ErrTagModelFit))
		}
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

// fitCSS estimates the coefficients and fills residuals and fitted values.
func (m *Model) fitCSS(y []float64) {
	p, q := m.Order.P, m.Order.Q
	n := len(y)

	// Differenced models carry no constant, so they are fitted around zero.
	if m.Order.D == 0 {
		m.Intercept, m.Scale = stat.MeanStdDev(y, nil)
	} else {
		m.Intercept, m.Scale = 0, rms(y)
	}
	m.z = make([]float64, n)
	if m.Scale > 0 {
		for i, v := range y {
			m.z[i] = (v - m.Intercept) / m.Scale
		}
	}

	clear(m.ARCoeffs)
	clear(m.MACoeffs)

	if m.Scale > 0 && p+q > 0 {
		if p > 0 {
			if acf := stats.ACF(timeseries.New(m.z), p); len(acf) > p {
				copy(m.ARCoeffs, stabilize(yuleWalker(acf, p)))
			}
		}
		m.optimize()
	}

	m.innov = m.innovations(m.ARCoeffs, m.MACoeffs)
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := range y {
		m.residuals[t] = m.innov[t] * m.Scale
		m.fittedVals[t] = y[t] - m.residuals[t]
	}

	start := max(p, q)
	sse := 0.0
	count := 0
	for t := start; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	switch {
	case count > p+q+1:
		m.Variance = sse / float64(count-p-q-1)
	case count > 0:
		m.Variance = sse / float64(count)
	default:
		m.Variance = 0
	}
}

// innovations runs the ARMA recursion over the standardized series and
// returns the one-step residuals. The first max(p, q) residuals are zero.
func (m *Model) innovations(phi, theta []float64) []float64 {
	z := m.z
	e := make([]float64, len(z))
	for t := max(len(phi), len(theta)); t < len(z); t++ {
		pred := 0.0
		for i, c := range phi {
			pred += c * z[t-i-1]
		}
		for j, c := range theta {
			pred += c * e[t-j-1]
		}
		e[t] = z[t] - pred
	}
	return e
}

func (m *Model) css(params []float64) float64 {
	p := m.Order.P
	e := m.innovations(params[:p], params[p:])
	sum := 0.0
	for _, v := range e {
		sum += v * v
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.Inf(1)
	}
	return sum
}

// optimize minimizes the conditional sum of squares with projected
// gradient descent and a backtracking step size.
func (m *Model) optimize() {
	p, q := m.Order.P, m.Order.Q
	params := make([]float64, p+q)
	copy(params, m.ARCoeffs)
	copy(params[p:], m.MACoeffs)

	current := m.css(params)
	step := 0.1
	grad := make([]float64, len(params))
	candidate := make([]float64, len(params))

	converged := false
	for iter := 0; iter < maxIter && !converged; iter++ {
		norm := 0.0
		for i := range params {
			orig := params[i]
			params[i] = orig + gradEpsilon
			up := m.css(params)
			params[i] = orig - gradEpsilon
			down := m.css(params)
			params[i] = orig
			grad[i] = (up - down) / (2 * gradEpsilon)
			norm += grad[i] * grad[i]
		}
		norm = math.Sqrt(norm)
		if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
			break
		}

		accepted := false
		for ; step > minStepSize; step /= 2 {
			for i := range params {
				candidate[i] = clamp(params[i]-step*grad[i]/norm, coeffBound)
			}
			limitAR(candidate[:p])
			next := m.css(candidate)
			if next < current {
				converged = current-next < tolerance*(1+current)
				copy(params, candidate)
				current = next
				accepted = true
				break
			}
		}
		if !accepted {
			break
		}
		step *= 1.5
	}

	copy(m.ARCoeffs, params[:p])
	copy(m.MACoeffs, params[p:])
}

// calculateIC calculates AIC, AICc, and BIC from Gaussian log-likelihood.
func (m *Model) calculateIC() {
	start := max(m.Order.P, m.Order.Q)
	n := len(m.residuals) - start
	k := m.Order.P + m.Order.Q + 1

	sse := 0.0
	for _, r := range m.residuals[start:] {
		sse += r * r
	}

	if m.Variance > 0 && n > 0 {
		nf := float64(n)
		m.LogLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(1)
	}

	kf := float64(k)
	nf := float64(n)
	m.AIC = -2*m.LogLik + 2*kf
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Predict generates forecasts for the specified number of steps ahead on
// the original scale of the fitted series.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, goerr.New("model must be fitted before prediction")
	}
	if steps < 1 {
		return nil, goerr.New("steps must be at least 1", goerr.V("steps", steps))
	}

	n := len(m.z)
	z := make([]float64, n+steps)
	copy(z, m.z)
	e := make([]float64, n+steps)
	copy(e, m.innov)

	forecasts := make([]float64, steps)
	for h := 0; h < steps; h++ {
		t := n + h
		pred := 0.0
		for i, c := range m.ARCoeffs {
			if t-i-1 >= 0 {
				pred += c * z[t-i-1]
			}
		}
		// future innovations have expectation zero
		for j, c := range m.MACoeffs {
			if t-j-1 >= 0 {
				pred += c * e[t-j-1]
			}
		}
		z[t] = pred
		forecasts[h] = m.Intercept + pred*m.Scale
	}

	return m.integrate(forecasts), nil
}

// integrate undoes differencing, one level at a time from the innermost.
func (m *Model) integrate(forecasts []float64) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for level := len(m.levels) - 1; level >= 0; level-- {
		prev := m.levels[level]
		for j := range result {
			result[j] += prev
			prev = result[j]
		}
	}
	return result
}

// Residuals returns the model residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// FittedValues returns the one-step fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.LjungBoxResult
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	start := max(m.Order.P, m.Order.Q)
	lb := stats.LjungBox(timeseries.New(m.residuals[start:]), 10, m.Order.P+m.Order.Q)

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  append([]float64(nil), m.ARCoeffs...),
		MACoeffs:  append([]float64(nil), m.MACoeffs...),
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      m.data.Len(),
		LjungBox:  lb,
	}
}

// yuleWalker estimates AR coefficients from autocorrelations with the
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	v := 1 - phi[0]*phi[0]

	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
	}

	return phi
}

// stabilize clamps each coefficient and shrinks the set when the sum of
// magnitudes would let the AR recursion explode.
func stabilize(phi []float64) []float64 {
	total := 0.0
	for i, c := range phi {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			phi[i] = 0
			continue
		}
		phi[i] = clamp(c, coeffBound)
		total += math.Abs(phi[i])
	}
	if total >= 0.95 {
		for i := range phi {
			phi[i] *= 0.95 / total
		}
	}
	return phi
}

// limitAR scales phi so the sum of magnitudes is at most 1. A unit sum
// is allowed and continues a constant differenced series.
func limitAR(phi []float64) {
	total := 0.0
	for _, c := range phi {
		total += math.Abs(c)
	}
	if total > 1 {
		for i := range phi {
			phi[i] /= total
		}
	}
}

func rms(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range y {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(y)))
}

func clamp(v, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, v))
}
