// Package marionette is a deterministic, synchronous runtime for rigged 2D
// characters built on [Ebitengine] types.
//
// A rig is a hierarchy of [Node] values held in a [Graph], a table of
// continuous [Parameter] controls whose [Binding] grids move node
// properties, and pendulum bodies that add secondary motion. Each frame the
// [Rig] produces, for every drawable, an absolute transform, deformed
// vertices, an opacity and a draw-order value.
//
// # Quick start
//
// The loader hands the engine a fully built graph and parameter table:
//
//	root := marionette.NewNode(0, "root")
//	g := marionette.NewGraph(root)
//	g.AddChild(0, marionette.NewDrawableNode(5, "mouth", mesh, tex))
//
//	open := marionette.NewParameter(1, "Mouth:Open", 0, 1)
//	open.AddBinding(marionette.NewValueBinding(5, marionette.PropOpacity,
//		[][]float64{{1}, {0}}))
//
//	rig := marionette.New(g, []*marionette.Parameter{open},
//		marionette.DefaultPhysicsSettings())
//	if err := rig.Init(); err != nil {
//		log.Fatal(err)
//	}
//
// Then, once per displayed frame:
//
//	rig.SetParam("Mouth:Open", marionette.Vec2{X: 0.5})
//	rig.BeginFrame()
//	rig.EndFrame(dt)
//	for _, d := range rig.Drawables() {
//		verts = d.EbitenVertices(verts)
//		screen.DrawTriangles(verts, d.Indices, d.Texture, nil)
//	}
//
// # Binding semantics
//
// Translation, rotation and zsort bindings add to the node's per-frame
// values; scale bindings multiply; opacity bindings replace. Deform bindings
// replace the parameter's own entry in the target's [DeformStack], and the
// stack sums entries from different parameters.
//
// # Lifecycle
//
// Initialization runs in four ordered steps ([Rig.InitTransforms],
// [Rig.InitRender], [Rig.InitParams], [Rig.InitPhysics]), or all at once via
// [Rig.Init]. Out-of-order or repeated steps return errors wrapping
// [ErrLifecycle]. Malformed graphs (duplicate ids, unknown parents, deform
// vectors of the wrong length) panic, as does adding nodes once
// InitTransforms has run.
//
// [Ebitengine]: https://ebitengine.org
package marionette
