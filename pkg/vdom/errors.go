package vdom

import "fmt"

// ShapeError reports a render tree item that matches none of the valid
// node shapes.
type ShapeError struct {
	// Path locates the item, e.g. "[0].children[2]".
	Path string

	// Shape describes what was found.
	Shape string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed render tree item: %s", e.Shape)
	}
	return fmt.Sprintf("malformed render tree item at %s: %s", e.Path, e.Shape)
}

// Validate checks that every node in the tree has a well-formed shape.
func Validate(tree Tree) error {
	for i, node := range tree {
		if err := validateNode(node, fmt.Sprintf("[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// CheckNode returns a *ShapeError if the node itself is malformed.
// Children are not inspected.
func CheckNode(node *Node, path string) error {
	if node == nil {
		return &ShapeError{Path: path, Shape: "nil node"}
	}
	switch node.Kind {
	case KindText, KindFragment:
		return nil
	case KindSlot:
		if len(node.Children) != 1 {
			return &ShapeError{Path: path, Shape: fmt.Sprintf("slot with %d values, want exactly 1", len(node.Children))}
		}
		return nil
	case KindElement:
		if node.Tag == "" {
			return &ShapeError{Path: path, Shape: "element without a tag"}
		}
		for _, attr := range node.Props {
			if attr.IsEmpty() {
				return &ShapeError{Path: path, Shape: "<" + node.Tag + "> attribute with an empty name"}
			}
		}
		return nil
	default:
		return &ShapeError{Path: path, Shape: fmt.Sprintf("unknown node kind %d", node.Kind)}
	}
}

func validateNode(node *Node, path string) error {
	if err := CheckNode(node, path); err != nil {
		return err
	}
	field := ".children"
	switch node.Kind {
	case KindFragment:
		field = ".items"
	case KindSlot:
		field = ""
	}
	for i, child := range node.Children {
		if err := validateNode(child, fmt.Sprintf("%s%s[%d]", path, field, i)); err != nil {
			return err
		}
	}
	return nil
}
