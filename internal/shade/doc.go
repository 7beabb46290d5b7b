// Package shade maps the metaball field to color.
//
// For a coordinate (u, v) in the unit square the field is the normalised sum
// of a falloff of the distance to each source. A [Mapping] chooses the
// falloff, the normalisation and the color transform:
//
//   - [Banded]: 1/d falloff over 20, periodic bands with a filled core
//   - [UnbandedK4]: 1/(1+d) falloff over 4, single threshold
//   - [UnbandedK20]: 1/d falloff over 20, single threshold
//
// [Renderer.Evaluate] is a pure function of its arguments and never retains
// the snapshot it reads. Pixels within the parameter-space border always take
// [EdgeColor].
//
//	r := shade.NewRenderer(shade.Banded{}, runtime.NumCPU())
//	frame, _ := shade.NewFrame(256, 256)
//	r.Render(frame, sim.Snapshot())
package shade
