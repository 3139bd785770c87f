package classify

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

func TestDiscriminant(t *testing.T) {
	tests := []struct {
		curve Curve
		disc  int64
	}{
		{Curve{0, -1, 0}, 4},
		{Curve{0, 0, 1}, -27},
		{Curve{0, 0, 0}, 0},
		{Curve{1, 1, 1}, -16},
		{Curve{2, 3, 4}, -4*8*4 + 4*9 + 18*24 - 4*27 - 27*16},
	}
	for _, tc := range tests {
		disc := tc.curve.Discriminant()
		require.Zero(t, big.NewInt(tc.disc).Cmp(disc), "%s: got %s, expected %d", tc.curve, disc, tc.disc)
	}
}

func TestIntegerRoots(t *testing.T) {
	require.Equal(t, []int64{-1, 0, 1}, Curve{0, -1, 0}.IntegerRoots(0))
	require.Equal(t, []int64{-1}, Curve{0, 0, 1}.IntegerRoots(0))
	require.Equal(t, []int64{2}, Curve{0, 0, 1}.IntegerRoots(3))
	require.Empty(t, Curve{0, 1, 0}.IntegerRoots(1))
	// (x - 100)(x + 37)(x - 5) = x³ - 68x² - 3385x + 18500
	require.Equal(t, []int64{-37, 5, 100}, Curve{-68, -3385, 18500}.IntegerRoots(0))
	// Double root at 3: (x - 3)²(x + 6) = x³ - 27x + 54
	require.Equal(t, []int64{-6, 3}, Curve{0, -27, 54}.IntegerRoots(0))
}

func TestSquareDivisors(t *testing.T) {
	require.Equal(t, []int64{1, 2, 3, 6}, squareDivisors(-108))
	require.Equal(t, []int64{1, 3}, squareDivisors(-27))
	require.Equal(t, []int64{1}, squareDivisors(7))
	require.Equal(t, []int64{1, 2, 4, 8, 16}, squareDivisors(256))
	require.Nil(t, squareDivisors(0))
}

func TestTorsionGroups(t *testing.T) {
	tests := []struct {
		curve Curve
		label lattice.Label
	}{
		{Curve{0, -1, 0}, "Z2xZ2"},
		{Curve{0, 0, 1}, "Z6"},
		{Curve{0, 0, -2}, "0"},
		{Curve{0, 1, 0}, "Z2"},
		{Curve{0, 0, 4}, "Z3"},
		{Curve{0, 4, 0}, "Z4"},
	}
	for _, tc := range tests {
		label, err := tc.curve.TorsionName()
		require.NoError(t, err, tc.curve.String())
		require.Equal(t, tc.label, label, tc.curve.String())
	}
}

func TestTwoTorsion(t *testing.T) {
	tests := []struct {
		curve Curve
		label lattice.Label
	}{
		{Curve{0, -1, 0}, "Z2xZ2"},
		{Curve{0, 0, 1}, "Z2"},
		{Curve{0, 0, 4}, "0"},
		{Curve{0, 4, 0}, "Z2"},
	}
	for _, tc := range tests {
		label, err := tc.curve.TwoTorsionName()
		require.NoError(t, err, tc.curve.String())
		require.Equal(t, tc.label, label, tc.curve.String())
	}
}

func TestSingularCurves(t *testing.T) {
	for _, curve := range []Curve{{0, 0, 0}, {0, -3, 2}, {-2, 1, 0}} {
		_, err := curve.TorsionName()
		require.True(t, errors.Is(err, chunkstore.ErrNotComputable), curve.String())
		_, err = curve.TwoTorsionName()
		require.True(t, errors.Is(err, chunkstore.ErrNotComputable), curve.String())
	}
}

func TestEquation(t *testing.T) {
	require.Equal(t, "y² = x³ + 2x² - x + 1", Curve{2, -1, 1}.Equation())
	require.Equal(t, "y² = x³ - x", Curve{0, -1, 0}.Equation())
	require.Equal(t, "y² = x³", Curve{}.Equation())
	require.Equal(t, "y² = x³ - 3x² - 12", Curve{-3, 0, -12}.Equation())
}

func TestClassifiers(t *testing.T) {
	c, err := Get("Torsion")
	require.NoError(t, err)
	label, err := c.Classify(lattice.Point3d{0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, lattice.Label("Z6"), label)

	// 2d points fix A = 0.
	label, err = c.Classify(lattice.Point2d{-1, 0})
	require.NoError(t, err)
	require.Equal(t, lattice.Label("Z2xZ2"), label)

	_, err = Get("rank")
	require.Error(t, err)
	require.Equal(t, []string{"torsion", "twotorsion"}, Names())
}

func TestTorsionGroupNames(t *testing.T) {
	tests := []struct {
		orders []int
		label  lattice.Label
	}{
		{[]int{1, 5, 5, 5, 5}, "Z5"},
		{[]int{1, 2, 2, 2, 4, 4, 4, 4}, "Z2xZ4"},
		{[]int{1, 2, 3, 3, 4, 4, 6, 6, 12, 12, 12, 12}, "Z12"},
		{[]int{1, 2, 2, 2, 3, 3, 6, 6, 6, 6, 6, 6}, "Z2xZ6"},
	}
	for _, tc := range tests {
		label, err := torsionGroup(tc.orders)
		require.NoError(t, err)
		require.Equal(t, tc.label, label)
	}
	_, err := torsionGroup([]int{1, 3})
	require.ErrorIs(t, err, chunkstore.ErrNotComputable)
}
