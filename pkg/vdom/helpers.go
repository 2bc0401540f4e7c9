package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Slot wraps a single dynamic value. A string is wrapped as a text node.
func Slot(value any) *Node {
	node := &Node{Kind: KindSlot}
	switch v := value.(type) {
	case *Node:
		node.Children = []*Node{v}
	case string:
		node.Children = []*Node{Text(v)}
	default:
		node.Children = []*Node{Text(fmt.Sprint(v))}
	}
	return node
}

// A creates an attribute.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Element creates an element node.
//
// Arguments may be Attr, Props, *Node, Tree, []*Node or string (wrapped as
// a text node). Nil values are skipped.
func Element(tag string, args ...any) *Node {
	node := &Node{
		Kind:     KindElement,
		Tag:      tag,
		Children: make([]*Node, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if !v.IsEmpty() {
				node.Props = append(node.Props, v)
			}
		case Props:
			node.Props = append(node.Props, v...)
		default:
			node.Children = appendChild(node.Children, v)
		}
	}

	return node
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	node := &Node{
		Kind:     KindFragment,
		Children: make([]*Node, 0),
	}

	for _, child := range children {
		node.Children = appendChild(node.Children, child)
	}

	return node
}

// Items builds a tree from the same argument forms Fragment accepts.
func Items(children ...any) Tree {
	var tree Tree
	for _, child := range children {
		tree = appendChild(tree, child)
	}
	return tree
}

func appendChild(dst []*Node, child any) []*Node {
	switch v := child.(type) {
	case nil:
	case *Node:
		if v != nil {
			dst = append(dst, v)
		}
	case Tree:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
	case []*Node:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
	case string:
		dst = append(dst, Text(v))
	default:
		dst = append(dst, Text(fmt.Sprint(v)))
	}
	return dst
}
