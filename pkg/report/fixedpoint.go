package report

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Fixed is a measurement split into an integer part and two truncated fractional digits,
// the way the console format carries kcps/spad values.
type Fixed struct {
	Int  int32
	Frac int32
}

// DecimalPart returns the first two fractional digits of x, truncated toward zero.
// Negative inputs give a negative fraction.
func DecimalPart[F constraints.Float](x F) int32 {
	intPart := int32(x)
	return int32((x - F(intPart)) * 100)
}

func ToFixed[F constraints.Float](x F) Fixed {
	return Fixed{Int: int32(x), Frac: DecimalPart(x)}
}

func (f Fixed) String() string {
	return fmt.Sprintf("%d.%02d", f.Int, f.Frac)
}
