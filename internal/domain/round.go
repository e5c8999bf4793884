package domain

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// toFixed renders v with exactly precision decimal places. Rounding works on
// the exact binary value of v and breaks ties away from zero, so 1.125 gives
// "1.13" while 1.005 (stored just below) gives "1.00".
func toFixed(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	if precision < 0 {
		precision = 0
	}

	neg := v < 0
	scaled := new(big.Rat).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)))

	q, rem := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(scaled.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	digits := q.String()
	if len(digits) <= precision {
		digits = strings.Repeat("0", precision-len(digits)+1) + digits
	}

	var b strings.Builder
	if neg && q.Sign() != 0 {
		b.WriteByte('-')
	}
	if precision == 0 {
		b.WriteString(digits)
		return b.String()
	}
	cut := len(digits) - precision
	b.WriteString(digits[:cut])
	b.WriteByte('.')
	b.WriteString(digits[cut:])
	return b.String()
}
