package vdom

import "testing"

func TestText(t *testing.T) {
	node := Text("hello")
	if node.Kind != KindText || node.Text != "hello" {
		t.Errorf("Text() = %+v", node)
	}
	if got := Textf("%d items", 3).Text; got != "3 items" {
		t.Errorf("Textf() = %q", got)
	}
}

func TestSlot(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "x", "x"},
		{"int", 42, "42"},
		{"node", Text("y"), "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := Slot(tt.value)
			if node.Kind != KindSlot {
				t.Fatalf("Kind = %v, want Slot", node.Kind)
			}
			if len(node.Children) != 1 {
				t.Fatalf("len(Children) = %d, want 1", len(node.Children))
			}
			if node.Children[0].Text != tt.want {
				t.Errorf("wrapped text = %q, want %q", node.Children[0].Text, tt.want)
			}
		})
	}
}

func TestElement(t *testing.T) {
	node := Element("div",
		A("class", "card"),
		Props{A("id", "main"), A("data-x", "1")},
		nil,
		"text",
		Element("span"),
		Tree{Text("a"), nil, Text("b")},
		Attr{},
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("node = %+v", node)
	}
	wantKeys := []string{"class", "id", "data-x"}
	if len(node.Props) != len(wantKeys) {
		t.Fatalf("Props = %+v", node.Props)
	}
	for i, k := range wantKeys {
		if node.Props[i].Key != k {
			t.Errorf("Props[%d].Key = %q, want %q", i, node.Props[i].Key, k)
		}
	}
	if len(node.Children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(node.Children))
	}
	if node.Children[1].Tag != "span" {
		t.Errorf("Children[1] = %+v", node.Children[1])
	}
}

func TestElementNoChildren(t *testing.T) {
	node := Element("br")
	if node.Children == nil {
		t.Error("Children should be empty, not nil")
	}
	if len(node.Children) != 0 {
		t.Errorf("len(Children) = %d", len(node.Children))
	}
}

func TestFragment(t *testing.T) {
	node := Fragment("a", Text("b"), []*Node{Text("c"), nil}, 7)
	if node.Kind != KindFragment {
		t.Fatalf("Kind = %v", node.Kind)
	}
	want := []string{"a", "b", "c", "7"}
	if len(node.Children) != len(want) {
		t.Fatalf("len(Children) = %d, want %d", len(node.Children), len(want))
	}
	for i, w := range want {
		if node.Children[i].Text != w {
			t.Errorf("Children[%d] = %q, want %q", i, node.Children[i].Text, w)
		}
	}
}

func TestItems(t *testing.T) {
	tree := Items("a", nil, Element("p"))
	if len(tree) != 2 {
		t.Fatalf("len = %d, want 2", len(tree))
	}
	if tree[1].Tag != "p" {
		t.Errorf("tree[1] = %+v", tree[1])
	}
}
