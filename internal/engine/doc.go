// Package engine advances a discretised electromagnetic field in time.
//
// An [Engine] owns two lattices. Each step derives every cell of the next
// lattice from the current one using central differences for the curls
// and the current density of the cell's source:
//
//	B' = B - dt * curl(E)
//	E' = E + dt * (curl(B) / (e0*m0) - J / e0)
//
// then swaps them. Both fields are updated at the same time level.
//
// The engine writes the stream header and the full initial lattice when
// primed, then one frame for every step k with k % TimeDecimation == 0,
// keeping only cells whose coordinates satisfy (c+1) % SpaceDecimation == 0.
//
// # Example
//
//	enc := stream.NewEncoder(w)
//	eng, err := engine.New(lat, sources, params, enc,
//		engine.WithLogger(log), engine.WithMetric(metrics.NewEnergy()))
//	result, err := eng.Run(ctx)
//
// # Concurrency
//
// The per-cell pass is split across worker goroutines by z-plane. An
// Engine itself must be driven from one goroutine.
package engine
