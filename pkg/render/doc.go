// Package render serializes render trees into HTML.
//
// Serialization is depth-first and order-preserving:
//
//   - Text nodes are written verbatim; no escaping is applied
//   - Slots write their single wrapped value with no tag
//   - Elements write <tag attrs>children</tag>, or <tag attrs/> when the
//     children serialize to an empty string (script is never self-closed)
//   - Fragments write their items with no wrapping markup
//
// There is no void-element list; whether an element self-closes depends
// only on its serialized children.
//
// # Basic Usage
//
//	html, err := render.Serialize(tree)
//
// To opt into attribute escaping:
//
//	renderer := render.NewRenderer(render.RendererConfig{EscapeAttributes: true})
//	err := renderer.RenderToWriter(w, tree)
//
// # Errors
//
// A node matching none of the valid shapes aborts rendering with a
// *vdom.ShapeError whose Path locates the node, e.g. "[0].children[2]".
// No partial output is produced.
package render
