/*
	Package app wires configured stores to the viewer.  It loads the TOML configuration,
	opens datasets (storage engine, record cache, classifier and chunk store), and runs
	the frame loop that composes the visible cross-section, draws the HUD and applies
	camera input from a Display.
*/
package app
