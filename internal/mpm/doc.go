// Package mpm implements a one-dimensional explicit Material Point Method
// solver using the Update-Stress-Last (USL) scheme.
//
// The body is a set of material points ([Particle]) moving through a fixed
// background grid ([Mesh]) of two-node linear elements ([Element]) that share
// their [Node] values with their neighbours:
//
//   - [Material]: immutable density/stiffness pair
//   - [Mesh]: ordered chain of equal-length elements over [XStart, XEnd]
//   - [Model]: seeds particles, selects the time step and runs the solve
//   - [Snapshot]: immutable copy of every particle after one step
//
// # Example
//
//	mat, _ := mpm.NewMaterial(1, 4*math.Pi*math.Pi)
//	mesh, _ := mpm.NewMesh(0, 1, 1)
//	_ = mesh.GenerateMesh(mat)
//	model, _ := mpm.NewModel(mesh, 1, 10)
//	model.Particles()[0].Velocity = 0.1
//	mesh.Nodes[0].Fix()
//	_ = model.Solve(ctx)
//
// # Thread Safety
//
// Model instances are NOT thread-safe. Independent models share nothing but
// their Materials, which are immutable, so separate runs may execute
// concurrently.
package mpm
