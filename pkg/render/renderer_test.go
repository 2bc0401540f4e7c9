package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aldinh777/rc-template-sg/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	for _, s := range []string{"", "Hello, World!", "<b>already markup</b>", "a & b"} {
		html, err := Serialize(vdom.Items(s))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if html != s {
			t.Errorf("Serialize([%q]) = %q, want verbatim", s, html)
		}
	}
}

func TestRenderSlotIsTransparent(t *testing.T) {
	inner := []*vdom.Node{
		vdom.Text("x"),
		vdom.Element("div", vdom.A("id", "a"), "hi"),
		vdom.Fragment("a", "b"),
		vdom.Slot("nested"),
	}

	for _, node := range inner {
		wrapped, err := Serialize(vdom.Tree{{Kind: vdom.KindSlot, Children: []*vdom.Node{node}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		plain, err := Serialize(vdom.Tree{node})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wrapped != plain {
			t.Errorf("slot output %q differs from unwrapped %q", wrapped, plain)
		}
	}
}

func TestRenderElement(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.Node
		want string
	}{
		{
			name: "empty div self-closes",
			node: vdom.Element("div"),
			want: `<div/>`,
		},
		{
			name: "div with text",
			node: vdom.Element("div", "hi"),
			want: `<div>hi</div>`,
		},
		{
			name: "empty script is never self-closed",
			node: vdom.Element("script"),
			want: `<script></script>`,
		},
		{
			name: "script with attributes",
			node: vdom.Element("script", vdom.A("src", "/app.js")),
			want: `<script src="/app.js"></script>`,
		},
		{
			name: "attributes in declared order",
			node: vdom.Element("x", vdom.A("a", "1"), vdom.A("b", "2")),
			want: `<x a="1" b="2"/>`,
		},
		{
			name: "br follows the same rule",
			node: vdom.Element("br"),
			want: `<br/>`,
		},
		{
			name: "no void list: input with children",
			node: vdom.Element("input", "x"),
			want: `<input>x</input>`,
		},
		{
			name: "empty text child still self-closes",
			node: vdom.Element("p", ""),
			want: `<p/>`,
		},
		{
			name: "empty fragment child still self-closes",
			node: vdom.Element("span", vdom.Fragment()),
			want: `<span/>`,
		},
		{
			name: "empty attribute value kept",
			node: vdom.Element("option", vdom.A("selected", "")),
			want: `<option selected=""/>`,
		},
		{
			name: "nested",
			node: vdom.Element("ul",
				vdom.Element("li", "one"),
				vdom.Element("li", vdom.Slot("two")),
			),
			want: `<ul><li>one</li><li>two</li></ul>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(vdom.Tree{tt.node})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderFragment(t *testing.T) {
	got, err := Serialize(vdom.Items(vdom.Fragment("a", "b")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := Serialize(vdom.Items("a"))
	b, _ := Serialize(vdom.Items("b"))
	if got != a+b || got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}

func TestRenderPage(t *testing.T) {
	tree := vdom.Items(
		vdom.Element("html",
			vdom.Element("body", vdom.A("class", "x"), "hello"),
		),
	)

	got, err := Serialize(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<html><body class="x">hello</body></html>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderElementHelpers(t *testing.T) {
	tree := vdom.Items(vdom.Html(vdom.Lang("en"),
		vdom.Head(vdom.Meta(vdom.Charset("utf-8")), vdom.Title("Home")),
		vdom.Body(
			vdom.Div(vdom.ID("app")),
			vdom.Script(vdom.Src("/app.js"), vdom.Bool("defer")),
		),
	))

	got, err := Serialize(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<html lang="en"><head><meta charset="utf-8"/><title>Home</title></head>` +
		`<body><div id="app"/><script src="/app.js" defer=""></script></body></html>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderParsedPage(t *testing.T) {
	tree, err := vdom.ParseTree([]byte(
		`[{"tag":"html","props":{},"children":[{"tag":"body","props":{"class":"x"},"children":["hello"]}]}]`,
	))
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}

	got, err := Serialize(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<html><body class="x">hello</body></html>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderAttributeQuotingIsVerbatimByDefault(t *testing.T) {
	node := vdom.Element("a", vdom.A("title", `say "hi"`))

	got, err := Serialize(vdom.Tree{node})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<a title="say "hi""/>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderEscapeAttributes(t *testing.T) {
	renderer := NewRenderer(RendererConfig{EscapeAttributes: true})
	node := vdom.Element("a", vdom.A("title", `say "hi" & <go>`), "<b>text</b>")

	got, err := renderer.RenderToString(vdom.Tree{node})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<a title="say &quot;hi&quot; &amp; &lt;go&gt;"><b>text</b></a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderToWriter(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	var buf bytes.Buffer

	if err := renderer.RenderToWriter(&buf, vdom.Items(vdom.Element("p", "x"), "y")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "<p>x</p>y" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenderMalformed(t *testing.T) {
	tests := []struct {
		name string
		tree vdom.Tree
		path string
	}{
		{"nil item", vdom.Tree{nil}, "[0]"},
		{"element without tag", vdom.Tree{vdom.Text("ok"), {Kind: vdom.KindElement}}, "[1]"},
		{"slot with two values", vdom.Tree{{Kind: vdom.KindSlot, Children: []*vdom.Node{vdom.Text("a"), vdom.Text("b")}}}, "[0]"},
		{"unknown kind", vdom.Tree{{Kind: vdom.Kind(42)}}, "[0]"},
		{
			name: "well-formed deep tree",
			tree: vdom.Items(vdom.Element("div", vdom.Fragment(vdom.Slot(vdom.Element("p")))), vdom.Element("ul")),
			path: "",
		},
		{
			name: "nested nil child",
			tree: vdom.Tree{{Kind: vdom.KindElement, Tag: "div", Children: []*vdom.Node{
				{Kind: vdom.KindFragment, Children: []*vdom.Node{
					{Kind: vdom.KindSlot, Children: []*vdom.Node{nil}},
				}},
			}}},
			path: "[0].children[0].items[0][0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewRenderer(RendererConfig{}).RenderToWriter(&buf, tt.tree)
			if tt.path == "" {
				if err != nil {
					t.Fatalf("well-formed tree rejected: %v", err)
				}
				return
			}
			var se *vdom.ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *vdom.ShapeError", err)
			}
			if se.Path != tt.path {
				t.Errorf("Path = %q, want %q", se.Path, tt.path)
			}
			if buf.Len() != 0 {
				t.Errorf("partial output written: %q", buf.String())
			}
			if !strings.Contains(err.Error(), "malformed render tree item") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestRenderMatchesValidatePath(t *testing.T) {
	tree := vdom.Tree{{Kind: vdom.KindFragment, Children: []*vdom.Node{
		vdom.Text("a"),
		{Kind: vdom.KindElement, Tag: "p", Children: []*vdom.Node{nil}},
	}}}

	_, renderErr := Serialize(tree)
	validateErr := vdom.Validate(tree)

	var re, ve *vdom.ShapeError
	if !errors.As(renderErr, &re) || !errors.As(validateErr, &ve) {
		t.Fatalf("expected shape errors, got %v / %v", renderErr, validateErr)
	}
	if re.Path != ve.Path {
		t.Errorf("render path %q != validate path %q", re.Path, ve.Path)
	}
}

func TestRenderDeterministic(t *testing.T) {
	tree := vdom.Items(vdom.Element("div", vdom.A("z", "1"), vdom.A("a", "2"), vdom.Element("i")))
	first, _ := Serialize(tree)
	for i := 0; i < 20; i++ {
		again, _ := Serialize(tree)
		if again != first {
			t.Fatalf("output changed between runs: %q vs %q", first, again)
		}
	}
}
