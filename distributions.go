// -*- tab-width:2 -*-

package netlat

// This file has quantile functions for packet sizes

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SizeQuantile maps a probability p in [0, 1] to a packet size in
// bytes, so feeding it uniform p draws sizes from the distribution.
type SizeQuantile func(p float64) float64

// FixedSize always returns size.
func FixedSize(size int) SizeQuantile {
	return func(float64) float64 { return float64(size) }
}

// UniformSizes spreads sizes evenly over [a, b].
func UniformSizes(a, b float64) SizeQuantile {
	return func(p float64) float64 {
		if p < 0 {
			return a
		}

		if p > 1 {
			return b
		}

		return a + p*(b-a) // Linear interpolation between a and b
	}
}

// NormalSizes draws from a normal with mean mu and standard deviation
// sigma.
func NormalSizes(mu, sigma float64) SizeQuantile {
	norm := distuv.Normal{
		Mu:    mu,
		Sigma: sigma,
	}

	return clamped(norm.Quantile)
}

// LogNormalSizes draws from a log-normal whose logarithm has mean mu
// and standard deviation sigma.
func LogNormalSizes(mu, sigma float64) SizeQuantile {
	logNorm := distuv.LogNormal{
		Mu:    mu,
		Sigma: sigma,
	}

	return clamped(logNorm.Quantile)
}

// ParetoSizes draws from a Pareto with scale xm and shape alpha, the
// usual heavy tail of flow sizes.
func ParetoSizes(xm, alpha float64) SizeQuantile {
	pareto := distuv.Pareto{
		Xm:    xm,
		Alpha: alpha,
	}

	return clamped(pareto.Quantile)
}

// clamped keeps p strictly inside (0, 1), where the gonum quantiles
// are finite, and never returns less than one byte.
func clamped(q func(float64) float64) SizeQuantile {
	const eps = 1e-9

	return func(p float64) float64 {
		p = math.Min(math.Max(p, eps), 1-eps)

		return math.Max(1, q(p))
	}
}
