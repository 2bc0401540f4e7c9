package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText     Kind = iota // Raw string, emitted verbatim
	KindSlot                 // Singleton wrapper around one dynamic value
	KindElement              // <div>, <script>, etc.
	KindFragment             // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindSlot:
		return "Slot"
	case KindElement:
		return "Element"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Node is a single item of a render tree.
//
// Children holds the element children for KindElement, the grouped items
// for KindFragment and exactly one wrapped value for KindSlot.
type Node struct {
	Kind     Kind    // Node type
	Tag      string  // Element tag name (e.g., "div")
	Props    Props   // Attributes in serialization order
	Children []*Node // Child nodes
	Text     string  // For KindText
}

// Tree is the root-level output of executing one component.
type Tree []*Node

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value string
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Props holds element attributes. It is a slice rather than a map so that
// attributes serialize in the order they were declared or decoded.
type Props []Attr

// Get returns the value of the first attribute named key.
func (p Props) Get(key string) (string, bool) {
	for _, a := range p {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the value of key in place, or appends it if absent.
func (p Props) Set(key, value string) Props {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Attr{Key: key, Value: value})
}

// Component is anything that can produce a render tree.
type Component interface {
	Render() (Tree, error)
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() (Tree, error)
}

// Render implements Component.
func (f *FuncComponent) Render() (Tree, error) {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() (Tree, error)) Component {
	return &FuncComponent{render: render}
}

// Static creates a component that always renders the given tree.
func Static(tree Tree) Component {
	return Func(func() (Tree, error) { return tree, nil })
}
