/*
Package classify holds the classifiers that label lattice points.  A point gives
the integer coefficients of the curve y² = x³ + Ax² + Bx + C (2d points fix A = 0)
and its label names the curve's rational torsion subgroup.
*/
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

// Torsion labels a point with the full rational torsion subgroup of its curve.
var Torsion = chunkstore.ClassifierFunc(func(p lattice.Point) (lattice.Label, error) {
	return CurveAt(p).TorsionName()
})

// TwoTorsion labels a point with the rational 2-torsion subgroup of its curve.
var TwoTorsion = chunkstore.ClassifierFunc(func(p lattice.Point) (lattice.Label, error) {
	return CurveAt(p).TwoTorsionName()
})

var classifiers = map[string]chunkstore.Classifier{
	"torsion":    Torsion,
	"twotorsion": TwoTorsion,
}

// Get returns the classifier with the given name.
func Get(name string) (chunkstore.Classifier, error) {
	c, found := classifiers[strings.ToLower(name)]
	if !found {
		return nil, fmt.Errorf("unknown classifier %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the available classifier names.
func Names() []string {
	names := make([]string, 0, len(classifiers))
	for name := range classifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
