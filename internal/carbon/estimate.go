package carbon

import "strconv"

// co2PerMB is the placeholder emission factor of the linear model.
const co2PerMB = 0.2

// Estimate returns the CO2 figure for a page of the given size. Resource
// counts are reported alongside but do not feed the model.
func Estimate(pageSizeMB float64) float64 {
	return pageSizeMB * co2PerMB
}

// round rounds x to the given number of decimal places. It works on the
// exact decimal value of x and resolves exact ties to even, so 0.125 rounds
// to 0.12 and a product that only looks like a tie is not pushed upward.
func round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		// FormatFloat output for a finite x always parses.
		return x
	}
	return r
}
