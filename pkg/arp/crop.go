package arp

// Crop selects the EW41(Y)..EW40(Y+1) season window out of a longer
// simulated horizon that may include burn-in weeks ahead of the reported
// season, mirroring the equivalent reporting-window crop in sarimax.
func Crop(weeks []WeekQuantiles, offset, length int) []WeekQuantiles {
	end := offset + length
	if offset < 0 || offset >= len(weeks) {
		return nil
	}
	if end > len(weeks) {
		end = len(weeks)
	}
	return weeks[offset:end]
}
