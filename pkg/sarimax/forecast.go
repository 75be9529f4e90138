package sarimax

import "math"

// quantileZ are the two-sided z-scores for the contract's four nested
// prediction-interval pairs (50/80/90/95%).
var quantileZ = map[string]float64{
	"95": 1.96,
	"90": 1.6449,
	"80": 1.2816,
	"50": 0.6745,
}

// WeekForecast is one week's quantile band, still in the [0, +inf) case
// scale after back-transform.
type WeekForecast struct {
	Lower95, Lower90, Lower80, Lower50 float64
	Pred                               float64 // percentile-50
	Upper50, Upper80, Upper90, Upper95 float64
}

// Forecast projects horizon weeks ahead. futureExog must supply one
// [temp_med, rolling_precip] pair per forecast week; when the caller has
// no real future climate observations, it should pass a seasonal-replay
// series (the prior season's same-week values), since futures are always
// unknown at forecast time.
func (m *Model) Forecast(horizon int, futureExog Exogenous) []WeekForecast {
	out := make([]WeekForecast, horizon)

	residuals := append([]float64(nil), m.lastValues...)
	for h := 0; h < horizon; h++ {
		arPred := 0.0
		p := len(m.arCoeffs)
		for i, c := range m.arCoeffs {
			idx := len(residuals) - 1 - i
			if idx >= 0 {
				arPred += c * residuals[idx]
			}
		}
		residuals = append(residuals, arPred)
		if len(residuals) > p*4+4 {
			residuals = residuals[len(residuals)-(p*4+4):]
		}

		temp := valueOr(futureExog.TempMed, h)
		precip := valueOr(futureExog.RollingPrecip, h)
		meanLog := m.intercept + m.betaExog[0]*temp + m.betaExog[1]*precip + arPred

		// Prediction variance grows with horizon as differencing and AR
		// feedback compound forecast-origin uncertainty, the same
		// sqrt(horizon)-scaling idiom the reference ARIMA implementation
		// uses for its confidence bands.
		sigmaH := m.residSigma * math.Sqrt(float64(h+1))

		out[h] = WeekForecast{
			Lower95: backTransform(meanLog - quantileZ["95"]*sigmaH),
			Lower90: backTransform(meanLog - quantileZ["90"]*sigmaH),
			Lower80: backTransform(meanLog - quantileZ["80"]*sigmaH),
			Lower50: backTransform(meanLog - quantileZ["50"]*sigmaH),
			Pred:    backTransform(meanLog),
			Upper50: backTransform(meanLog + quantileZ["50"]*sigmaH),
			Upper80: backTransform(meanLog + quantileZ["80"]*sigmaH),
			Upper90: backTransform(meanLog + quantileZ["90"]*sigmaH),
			Upper95: backTransform(meanLog + quantileZ["95"]*sigmaH),
		}
	}
	return out
}

// SeasonalReplay builds a future exogenous series by repeating the prior
// season's observed values, the naive seasonal-replay strategy used when
// no real future climate forecast is available.
func SeasonalReplay(priorSeasonTemp, priorSeasonPrecip []float64, horizon int) Exogenous {
	temp := make([]float64, horizon)
	precip := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		temp[i] = valueOr(priorSeasonTemp, i%max(1, len(priorSeasonTemp)))
		precip[i] = valueOr(priorSeasonPrecip, i%max(1, len(priorSeasonPrecip)))
	}
	return Exogenous{TempMed: temp, RollingPrecip: precip}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ReportingSlice returns the 52-week EW41..EW40 reporting season (contract
// weeks 16-67 of the raw horizon-67 forecast run from the EW25 origin,
// 1-indexed) by dropping the 15-week burn-in ahead of the reported season.
func ReportingSlice(forecast []WeekForecast) []WeekForecast {
	const burnIn, seasonLen = 15, 52
	if burnIn >= len(forecast) {
		return nil
	}
	end := burnIn + seasonLen
	if end > len(forecast) {
		end = len(forecast)
	}
	return forecast[burnIn:end]
}
