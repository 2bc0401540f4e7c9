// Package vdom provides the render tree produced by executing a component.
//
// A render tree is an ordered list of nodes. Every node has exactly one of
// four shapes, selected by Kind:
//
//   - KindText: a raw string, emitted verbatim
//   - KindSlot: a wrapper around exactly one value, emitted without a tag
//   - KindElement: a tag with ordered attributes and children
//   - KindFragment: a transparent grouping of items
//
// # Building Trees
//
// Trees can be built in Go with the factory functions:
//
//	tree := vdom.Items(
//	    vdom.Element("html",
//	        vdom.Element("body", vdom.A("class", "x"), "hello"),
//	    ),
//	)
//
// or with the per-tag helpers:
//
//	tree := vdom.Items(vdom.Html(vdom.Body(vdom.Class("x"), "hello")))
//
// or decoded from the JSON an executed page module prints:
//
//	tree, err := vdom.ParseTree([]byte(`[{"tag":"br","props":{},"children":[]}]`))
//
// Malformed items are reported as *ShapeError with the path of the
// offending node.
package vdom
