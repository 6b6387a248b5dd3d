// Package field provides the grid primitives for the electromagnetic solver.
//
// The package defines the data model the update engine works on:
//
//   - [Vec3]: three-component float32 vector used for E, B and current density
//   - [Cell]: per-point field state plus the index of the driving source
//   - [Lattice]: cubic grid of cells stored as one flat slice
//   - [Buffers]: the current/next lattice pair swapped after every step
//   - [Boundary]: derivative policy at the outer faces (Clip or Fit)
//
// # Derivatives
//
// Spatial derivatives are central differences scaled by the grid density
// (points per unit length). At the faces the [Boundary] decides how the
// missing neighbour is treated:
//
//	g := lat.Gradients(field.Clip, 30, x, y, z)
//	curlE, curlB := g.CurlE(), g.CurlB()
//
// # Thread Safety
//
// A Lattice is not synchronized. The engine reads only from the current
// buffer and writes disjoint cells of the next buffer, which is safe.
package field
