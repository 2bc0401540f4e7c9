package render

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/aldinh777/rc-template-sg/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// EscapeAttributes escapes attribute values before quoting them.
	// Off by default: values are inserted verbatim between double quotes,
	// so a value containing '"' produces broken markup.
	EscapeAttributes bool
}

// Renderer serializes render trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// Serialize renders a tree with the default configuration.
func Serialize(tree vdom.Tree) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(tree)
}

// RenderToString renders a tree to an HTML string.
// On error no partial output is returned.
func (r *Renderer) RenderToString(tree vdom.Tree) (string, error) {
	var buf bytes.Buffer
	if err := r.render(&buf, tree); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders a tree and writes the HTML to w.
// Nothing is written if the tree is malformed.
func (r *Renderer) RenderToWriter(w io.Writer, tree vdom.Tree) error {
	var buf bytes.Buffer
	if err := r.render(&buf, tree); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) render(buf *bytes.Buffer, tree vdom.Tree) error {
	for i, node := range tree {
		if err := r.renderNode(buf, node); err != nil {
			return withPathPrefix(err, "["+strconv.Itoa(i)+"]")
		}
	}
	return nil
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(buf *bytes.Buffer, node *vdom.Node) error {
	if err := vdom.CheckNode(node, ""); err != nil {
		return err
	}

	switch node.Kind {
	case vdom.KindText:
		buf.WriteString(node.Text)
		return nil
	case vdom.KindSlot:
		if err := r.renderNode(buf, node.Children[0]); err != nil {
			return withPathPrefix(err, "[0]")
		}
		return nil
	case vdom.KindElement:
		return r.renderElement(buf, node)
	default:
		return r.renderChildren(buf, node.Children, ".items")
	}
}

// renderElement renders an element with its attributes and children.
// Elements whose children serialize to nothing are self-closed, except
// script, which always gets an explicit closing tag.
func (r *Renderer) renderElement(buf *bytes.Buffer, node *vdom.Node) error {
	buf.WriteByte('<')
	buf.WriteString(node.Tag)
	r.renderAttributes(buf, node.Props)
	buf.WriteByte('>')

	start := buf.Len()
	if err := r.renderChildren(buf, node.Children, ".children"); err != nil {
		return err
	}

	if buf.Len() == start && node.Tag != "script" {
		buf.Truncate(start - 1)
		buf.WriteString("/>")
		return nil
	}

	buf.WriteString("</")
	buf.WriteString(node.Tag)
	buf.WriteByte('>')
	return nil
}

func (r *Renderer) renderChildren(buf *bytes.Buffer, children []*vdom.Node, field string) error {
	for i, child := range children {
		if err := r.renderNode(buf, child); err != nil {
			return withPathPrefix(err, field+"["+strconv.Itoa(i)+"]")
		}
	}
	return nil
}

// renderAttributes writes ` key="value"` for each attribute in order.
func (r *Renderer) renderAttributes(buf *bytes.Buffer, props vdom.Props) {
	for _, attr := range props {
		value := attr.Value
		if r.config.EscapeAttributes {
			value = escapeAttr(value)
		}
		buf.WriteByte(' ')
		buf.WriteString(attr.Key)
		buf.WriteString(`="`)
		buf.WriteString(value)
		buf.WriteByte('"')
	}
}

// withPathPrefix prepends seg to the location of a shape error as it
// propagates up the tree.
func withPathPrefix(err error, seg string) error {
	var se *vdom.ShapeError
	if errors.As(err, &se) {
		se.Path = seg + se.Path
	}
	return err
}
