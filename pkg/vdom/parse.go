package vdom

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseTree decodes a JSON render tree as printed by a component executor.
//
// Items are matched in order: a string is text, an array of exactly one
// value is a slot, an object with a non-empty "tag" is an element, and an
// object with an "items" array is a fragment. Numbers and booleans are
// stringified using their JSON text. Anything else yields a *ShapeError.
// Object keys are read in document order, so props keep their declared order.
func ParseTree(data []byte) (Tree, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ShapeError{Shape: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, &ShapeError{Shape: "root is " + describe(root) + ", want array"}
	}
	return parseList(root, "")
}

func parseList(list gjson.Result, path string) ([]*Node, error) {
	items := list.Array()
	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		node, err := parseItem(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseItem(item gjson.Result, path string) (*Node, error) {
	switch item.Type {
	case gjson.String:
		return Text(item.Str), nil
	case gjson.Number:
		return Text(item.Raw), nil
	case gjson.True, gjson.False:
		return Text(item.String()), nil
	case gjson.Null:
		return nil, &ShapeError{Path: path, Shape: "null"}
	}

	if item.IsArray() {
		values := item.Array()
		if len(values) != 1 {
			return nil, &ShapeError{Path: path, Shape: fmt.Sprintf("array of length %d", len(values))}
		}
		value, err := parseItem(values[0], path+"[0]")
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindSlot, Children: []*Node{value}}, nil
	}

	tag := item.Get("tag")
	if truthy(tag) {
		return parseElement(item, tag, path)
	}

	items := item.Get("items")
	if items.IsArray() {
		children, err := parseList(items, path+".items")
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindFragment, Children: children}, nil
	}

	return nil, &ShapeError{Path: path, Shape: "object without tag or items"}
}

func parseElement(item, tag gjson.Result, path string) (*Node, error) {
	if tag.Type != gjson.String {
		return nil, &ShapeError{Path: path, Shape: "tag is " + describe(tag) + ", want string"}
	}
	node := &Node{
		Kind:     KindElement,
		Tag:      tag.Str,
		Children: make([]*Node, 0),
	}

	props := item.Get("props")
	switch {
	case !props.Exists() || props.Type == gjson.Null:
	case props.IsObject():
		var perr error
		props.ForEach(func(key, value gjson.Result) bool {
			switch value.Type {
			case gjson.String:
				node.Props = append(node.Props, Attr{Key: key.String(), Value: value.Str})
			case gjson.Number, gjson.True, gjson.False:
				node.Props = append(node.Props, Attr{Key: key.String(), Value: value.Raw})
			default:
				perr = &ShapeError{
					Path:  path + ".props." + key.String(),
					Shape: "attribute value is " + describe(value),
				}
				return false
			}
			return true
		})
		if perr != nil {
			return nil, perr
		}
	default:
		return nil, &ShapeError{Path: path + ".props", Shape: describe(props) + ", want object"}
	}

	children := item.Get("children")
	switch {
	case !children.Exists() || children.Type == gjson.Null:
	case children.IsArray():
		parsed, err := parseList(children, path+".children")
		if err != nil {
			return nil, err
		}
		node.Children = parsed
	default:
		return nil, &ShapeError{Path: path + ".children", Shape: describe(children) + ", want array"}
	}

	return node, nil
}

// truthy mirrors the loose truthiness test used to detect a tag.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func describe(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "missing"
	case r.Type == gjson.Null:
		return "null"
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	default:
		return "boolean"
	}
}
