package rightedge

import (
	"fmt"
	"strconv"
	"strings"

	ap "github.com/lukaszgryglicki/apcomplex"

	"github.com/specator-tlca/RN/internal/sieve"
)

// CrossCheck recomputes the partial sum S(P) in high-precision point
// arithmetic, independently of the directed-rounding path. It mirrors
// the verification mode of the original study: the value is a
// diagnostic, not a certified bound, and should fall strictly inside
// the interval reported by Compute for the same cutoff.
func CrossCheck(cutoff int, bits uint) (float64, error) {
	if cutoff < 2 {
		return 0, fmt.Errorf("rightedge: cross-check cutoff %d too small", cutoff)
	}
	if bits < 64 {
		bits = 64
	}

	sum := ap.MustParse("0", bits)
	for _, p := range sieve.UpTo(cutoff) {
		pv := ap.MustParse(strconv.Itoa(p), bits)
		lp := ap.New(bits).Log(pv)
		den := ap.MustParse(strconv.FormatInt(int64(p)*int64(p)-1, 10), bits)
		term := ap.New(bits).Div(lp, den)
		sum = ap.New(bits).Add(sum, term)
	}

	s := strings.TrimSpace(sum.RealStringFixed(20))
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("rightedge: cross-check parse %q: %w", s, err)
	}
	return v, nil
}
