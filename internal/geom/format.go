package geom

import (
	"math"
	"strconv"
	"strings"
)

// String returns the two-row debug dump printed by printMatrix.
func (m Matrix) String() string {
	digits := integerDigits(m.Array())
	var sb strings.Builder
	row := func(vals ...float64) {
		for i, v := range vals {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(Nfs(v, digits, 4))
		}
		sb.WriteByte('\n')
	}
	row(m.A, m.B, m.C)
	row(m.D, m.E, m.F)
	return sb.String()
}

// integerDigits returns the number of digits left of the decimal point of
// the largest absolute value. All dump columns are padded to this width.
func integerDigits(vals []float64) int {
	big := 0.0
	for _, v := range vals {
		big = math.Max(big, math.Abs(v))
	}
	s := strconv.FormatFloat(big, 'f', -1, 64)
	switch i := strings.IndexByte(s, '.'); i {
	case -1:
		return len(s)
	case 0:
		return 1
	default:
		return i
	}
}

// Nfs formats v with at least left integer digits and exactly right
// fractional digits. Non-negative values get a leading space so columns
// of mixed signs line up. Halves round to even.
func Nfs(v float64, left, right int) string {
	return formatNumber(v, " ", "-", left, right)
}

// Nf is Nfs without the leading space for non-negative values.
func Nf(v float64, left, right int) string {
	return formatNumber(v, "", "-", left, right)
}

// Nfp is Nfs with a "+" in front of non-negative values.
func Nfp(v float64, left, right int) string {
	return formatNumber(v, "+", "-", left, right)
}

func formatNumber(v float64, plus, minus string, left, right int) string {
	sign := plus
	if v < 0 {
		sign = minus
	}
	if right < 0 {
		right = 0
	}
	if left < 0 {
		left = 0
	}
	scaled := math.RoundToEven(math.Abs(v) * math.Pow(10, float64(right)))
	digits := strconv.FormatFloat(scaled, 'f', 0, 64)
	if pad := left + right - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	if right == 0 {
		return sign + digits
	}
	cut := len(digits) - right
	return sign + digits[:cut] + "." + digits[cut:]
}

// Precision rounds v to dec decimal places.
func Precision(v float64, dec int) float64 {
	p := math.Pow(10, float64(dec))
	return math.Round(v*p) / p
}
