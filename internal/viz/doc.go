// Package viz is the terminal host for the metaball field.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view driving a [driver.Driver] one frame per tick
//   - [Picker]: preset menu that launches a live view
//   - [Canvas]: half-block canvas, two field pixels per terminal cell
//   - Three built-in themes; transparent pixels show the theme background
//
// # Key Bindings
//
//	Space   - Start/Stop animation
//	←/→ h/l - Rate control -/+0.05
//	M       - Cycle color mapping
//	R       - Redraw random sources
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
//	Q       - Quit
//
// # Recording
//
// G starts capturing every second frame; pressing it again (or quitting)
// writes the animation to the configured record path.
package viz
