package classify

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/latticeview/latticeview/lattice"
)

// Curve is the cubic curve y² = x³ + Ax² + Bx + C with integer coefficients.
type Curve struct {
	A, B, C int64
}

// CurveAt returns the curve with coefficients given by a lattice point.  3d points
// give (A, B, C) and 2d points give (B, C) with A = 0.
func CurveAt(p lattice.SimplePoint) Curve {
	if p.NumDims() == 2 {
		return Curve{0, int64(p.Value(0)), int64(p.Value(1))}
	}
	return Curve{int64(p.Value(0)), int64(p.Value(1)), int64(p.Value(2))}
}

// Discriminant returns -4A³C + A²B² + 18ABC - 4B³ - 27C².
func (e Curve) Discriminant() *big.Int {
	a, b, c := big.NewInt(e.A), big.NewInt(e.B), big.NewInt(e.C)
	mul := func(k int64, xs ...*big.Int) *big.Int {
		r := big.NewInt(k)
		for _, x := range xs {
			r.Mul(r, x)
		}
		return r
	}
	d := mul(-4, a, a, a, c)
	d.Add(d, mul(1, a, a, b, b))
	d.Add(d, mul(18, a, b, c))
	d.Add(d, mul(-4, b, b, b))
	d.Add(d, mul(-27, c, c))
	return d
}

// Singular returns true if the curve has a zero discriminant.
func (e Curve) Singular() bool {
	return e.Discriminant().Sign() == 0
}

// Equation returns the curve equation, e.g. "y² = x³ + 2x² - x + 1".
func (e Curve) Equation() string {
	var b strings.Builder
	b.WriteString("y² = x³")
	for _, term := range []struct {
		coeff int64
		power string
	}{{e.A, "x²"}, {e.B, "x"}, {e.C, ""}} {
		if term.coeff == 0 {
			continue
		}
		sign := "+"
		mag := term.coeff
		if mag < 0 {
			sign = "-"
			mag = -mag
		}
		if mag == 1 && term.power != "" {
			fmt.Fprintf(&b, " %s %s", sign, term.power)
		} else {
			fmt.Fprintf(&b, " %s %d%s", sign, mag, term.power)
		}
	}
	return b.String()
}

func (e Curve) String() string {
	return e.Equation()
}

// cubic evaluates x³ + Ax² + Bx + d exactly.
func (e Curve) cubic(x int64, d *big.Int) *big.Int {
	bx := big.NewInt(x)
	r := big.NewInt(1)
	r.Add(r.Mul(bx, big.NewInt(0).Add(big.NewInt(e.A), bx)), big.NewInt(e.B)) // x² + Ax + B
	r.Mul(r, bx)
	return r.Add(r, d)
}

// IntegerRoots returns the distinct integer x with x³ + Ax² + Bx + C = y², in
// increasing order.
func (e Curve) IntegerRoots(y int64) []int64 {
	d := big.NewInt(y)
	d.Mul(d, d)
	d.Sub(big.NewInt(e.C), d)

	// Every integer root divides d so is bounded by |d| unless d is zero, and by the
	// Cauchy bound in any case.
	bound := absInt64(e.A)
	if v := absInt64(e.B); v > bound {
		bound = v
	}
	if d.IsInt64() && absInt64(d.Int64()) > bound {
		bound = absInt64(d.Int64())
	} else if !d.IsInt64() {
		bound = math.MaxInt32
	}
	bound++
	lo, hi := -bound, bound

	found := make(map[int64]struct{}, 3)
	check := func(x int64) {
		if x >= lo && x <= hi && e.cubic(x, d).Sign() == 0 {
			found[x] = struct{}{}
		}
	}

	// Split at the critical points of the cubic into monotone pieces.
	segments := [][2]int64{{lo, hi}}
	disc := float64(e.A)*float64(e.A) - 3*float64(e.B)
	if disc > 0 {
		s := math.Sqrt(disc)
		c1 := math.Floor((-float64(e.A) - s) / 3)
		c2 := math.Ceil((-float64(e.A) + s) / 3)
		x1, x2 := clampInt64(c1, lo, hi), clampInt64(c2, lo, hi)
		for x := x1 - 2; x <= x1+2; x++ {
			check(x)
		}
		for x := x2 - 2; x <= x2+2; x++ {
			check(x)
		}
		segments = [][2]int64{{lo, x1 - 2}, {x1 + 2, x2 - 2}, {x2 + 2, hi}}
	}
	for _, seg := range segments {
		if seg[0] > seg[1] {
			continue
		}
		if x, ok := e.monotoneRoot(seg[0], seg[1], d); ok {
			found[x] = struct{}{}
		}
	}

	roots := make([]int64, 0, len(found))
	for x := range found {
		roots = append(roots, x)
	}
	for i := 1; i < len(roots); i++ {
		for j := i; j > 0 && roots[j] < roots[j-1]; j-- {
			roots[j], roots[j-1] = roots[j-1], roots[j]
		}
	}
	return roots
}

// monotoneRoot binary searches an integer root of the cubic on [lo, hi], where the
// cubic is monotone.
func (e Curve) monotoneRoot(lo, hi int64, d *big.Int) (int64, bool) {
	flo, fhi := e.cubic(lo, d).Sign(), e.cubic(hi, d).Sign()
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if flo == fhi {
		return 0, false
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		fm := e.cubic(mid, d).Sign()
		if fm == 0 {
			return mid, true
		}
		if fm == flo {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, false
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt64(f float64, lo, hi int64) int64 {
	if f <= float64(lo) {
		return lo
	}
	if f >= float64(hi) {
		return hi
	}
	return int64(f)
}
