package prediction

// ewmaAlpha weights the most recent observation in the fallback estimator.
const ewmaAlpha = 0.6

// EWMA folds an exponentially-weighted moving average over a chronological
// series: ewma[0] = v[0], ewma[k] = alpha*v[k] + (1-alpha)*ewma[k-1]. The
// result is the final term. Returns 0 for an empty series.
//
// This is deliberately not the rolling-mean feature computation: it needs no
// trained artifact and no derived features, which is exactly why it serves as
// the degraded tier.
func EWMA(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	out := values[0]
	for _, v := range values[1:] {
		out = alpha*v + (1-alpha)*out
	}
	return out
}
