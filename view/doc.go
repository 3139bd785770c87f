/*
	Package view renders cross-sections of computed chunks.  A Chunk memoizes the 2d
	slices of one computed chunk, a Compositor assembles the slices visible through a
	viewport, and a Camera tracks position, viewing axis and zoom from key input.

	Positions handed to the compositor are in the view frame (u, v, depth) of the
	current viewing axis: u and v are the horizontal and vertical lattice axes of the
	plane and depth is the viewing axis itself.  The mapping between the view frame and
	lattice order is lattice.ShapeForAxis.
*/
package view
