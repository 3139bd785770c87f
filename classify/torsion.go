package classify

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

// MaxTorsionOrder is the largest order of a rational torsion point (Mazur).
const MaxTorsionOrder = 12

// point is a rational point of a curve.  The zero value is not valid; use infinity.
type point struct {
	x, y *big.Rat
	inf  bool
}

var infinity = point{inf: true}

func (p point) integral() bool {
	return p.inf || (p.x.IsInt() && p.y.IsInt())
}

func (p point) equal(q point) bool {
	if p.inf || q.inf {
		return p.inf == q.inf
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p point) String() string {
	if p.inf {
		return "O"
	}
	return fmt.Sprintf("(%s, %s)", p.x.RatString(), p.y.RatString())
}

// add returns p + q under the chord-tangent group law.
func (e Curve) add(p, q point) point {
	if p.inf {
		return q
	}
	if q.inf {
		return p
	}
	if p.x.Cmp(q.x) == 0 && new(big.Rat).Neg(q.y).Cmp(p.y) == 0 {
		return infinity
	}
	a, b := new(big.Rat).SetInt64(e.A), new(big.Rat).SetInt64(e.B)
	slope := new(big.Rat)
	if p.equal(q) {
		// (3x² + 2Ax + B) / 2y
		num := new(big.Rat).Mul(p.x, p.x)
		num.Mul(num, big.NewRat(3, 1))
		num.Add(num, new(big.Rat).Mul(big.NewRat(2, 1), new(big.Rat).Mul(a, p.x)))
		num.Add(num, b)
		den := new(big.Rat).Mul(big.NewRat(2, 1), p.y)
		slope.Quo(num, den)
	} else {
		slope.Quo(new(big.Rat).Sub(q.y, p.y), new(big.Rat).Sub(q.x, p.x))
	}
	x3 := new(big.Rat).Mul(slope, slope)
	x3.Sub(x3, a)
	x3.Sub(x3, p.x)
	x3.Sub(x3, q.x)
	offset := new(big.Rat).Sub(p.y, new(big.Rat).Mul(slope, p.x))
	y3 := new(big.Rat).Mul(slope, x3)
	y3.Add(y3, offset)
	y3.Neg(y3)
	return point{x: x3, y: y3}
}

// order returns the order of a point on the curve or 0 if it has infinite order.
// Multiples of a torsion point stay integral so a non-integral multiple, or one
// beyond MaxTorsionOrder, proves infinite order.
func (e Curve) order(p point) int {
	cur, n := p, 1
	for !cur.inf {
		if n > MaxTorsionOrder || !cur.integral() {
			return 0
		}
		cur = e.add(cur, p)
		n++
	}
	return n
}

// TorsionOrders returns the orders of all rational torsion points including the
// point at infinity, in increasing order.  By Nagell-Lutz every torsion point is
// integral with y = 0 or y² dividing the discriminant.
func (e Curve) TorsionOrders() ([]int, error) {
	disc := e.Discriminant()
	if disc.Sign() == 0 {
		return nil, chunkstore.ErrNotComputable
	}
	if !disc.IsInt64() {
		return nil, fmt.Errorf("%w: discriminant of %s too large", chunkstore.ErrNotComputable, e)
	}
	ys := []int64{0}
	for _, y := range squareDivisors(disc.Int64()) {
		ys = append(ys, y, -y)
	}
	orders := []int{1}
	for _, y := range ys {
		for _, x := range e.IntegerRoots(y) {
			p := point{x: new(big.Rat).SetInt64(x), y: new(big.Rat).SetInt64(y)}
			if n := e.order(p); n > 0 {
				orders = append(orders, n)
			}
		}
	}
	sort.Ints(orders)
	return orders, nil
}

// TorsionName returns the torsion subgroup of the curve as one of the groups of
// Mazur's theorem, e.g. "0", "Z5" or "Z2xZ4".
func (e Curve) TorsionName() (lattice.Label, error) {
	orders, err := e.TorsionOrders()
	if err != nil {
		return "", err
	}
	return torsionGroup(orders)
}

func torsionGroup(orders []int) (lattice.Label, error) {
	has := func(k int) bool {
		for _, o := range orders {
			if o == k {
				return true
			}
		}
		return false
	}
	switch {
	case len(orders) == 1:
		return "0", nil
	case len(orders) == 2 && orders[1] == 2:
		return "Z2", nil
	case len(orders) == 4 && orders[1] == 2 && orders[3] == 2:
		return "Z2xZ2", nil
	}
	for _, k := range []int{9, 10, 12} {
		if has(k) {
			return lattice.Label(fmt.Sprintf("Z%d", k)), nil
		}
	}
	for k := 8; k >= 3; k-- {
		if !has(k) {
			continue
		}
		switch len(orders) {
		case k:
			return lattice.Label(fmt.Sprintf("Z%d", k)), nil
		case 2 * k:
			return lattice.Label(fmt.Sprintf("Z2xZ%d", k)), nil
		}
	}
	return "", fmt.Errorf("%w: no torsion group has point orders %v", chunkstore.ErrNotComputable, orders)
}

// TwoTorsionName returns the rational 2-torsion subgroup: "0", "Z2" or "Z2xZ2" for
// zero, one or three rational roots of the cubic.
func (e Curve) TwoTorsionName() (lattice.Label, error) {
	if e.Singular() {
		return "", chunkstore.ErrNotComputable
	}
	switch n := len(e.IntegerRoots(0)); n {
	case 0:
		return "0", nil
	case 1:
		return "Z2", nil
	case 3:
		return "Z2xZ2", nil
	default:
		return "", fmt.Errorf("%w: %s has %d rational roots", chunkstore.ErrNotComputable, e, n)
	}
}

// squareDivisors returns every positive y with y² dividing n.
func squareDivisors(n int64) []int64 {
	n = absInt64(n)
	if n == 0 {
		return nil
	}
	divisors := []int64{1}
	for p := int64(2); p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		var e int
		for n%p == 0 {
			n /= p
			e++
		}
		cur := len(divisors)
		pk := int64(1)
		for k := 1; k <= e/2; k++ {
			pk *= p
			for _, d := range divisors[:cur] {
				divisors = append(divisors, d*pk)
			}
		}
	}
	sort.Slice(divisors, func(i, j int) bool { return divisors[i] < divisors[j] })
	return divisors
}
