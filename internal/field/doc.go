// Package field simulates the point sources that drive the metaball field.
//
// A [Simulation] owns exactly [SourceCount] sources confined to the unit
// square. Each call to [Simulation.Step] moves every source by its velocity
// and reflects the velocity on any axis where the source reached or crossed
// a wall:
//
//	sim := field.New(rand.New(rand.NewSource(42)))
//	sim.Step(1.0 / 60)
//	snap := sim.Snapshot()
//
// Reflection flips the velocity but never pulls the position back inside the
// box, so a source may sit up to one step's travel outside [0, 1] for a
// frame. Renderers read positions through [Snapshot], a value copy that the
// simulation never mutates afterwards.
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. Snapshots are plain values and
// may be shared freely between render workers.
package field
