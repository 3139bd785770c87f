/*
	Package lattice provides types, constants, and functions that have no other internal
	dependencies and can be used by all packages within latticeview.  This includes
	lattice points and chunk addressing, the axis permutation table used for slicing,
	labels and their colors, logging, configuration maps, and serialization envelopes.
	Since these elements are used at multiple layers, we separate them here and allow
	reuse in layer-specific types through embedding.
*/
package lattice
