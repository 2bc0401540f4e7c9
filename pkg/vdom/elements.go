package vdom

// Element constructors for components written in Go. Each accepts the
// same arguments as Element.

// Document elements

func Html(args ...any) *Node  { return Element("html", args...) }
func Head(args ...any) *Node  { return Element("head", args...) }
func Body(args ...any) *Node  { return Element("body", args...) }
func Title(args ...any) *Node { return Element("title", args...) }
func Meta(args ...any) *Node  { return Element("meta", args...) }
func Link(args ...any) *Node  { return Element("link", args...) }
func Style(args ...any) *Node { return Element("style", args...) }

// Script creates a <script> element. Scripts are never self-closed.
func Script(args ...any) *Node { return Element("script", args...) }

// Sectioning elements

func Header(args ...any) *Node  { return Element("header", args...) }
func Footer(args ...any) *Node  { return Element("footer", args...) }
func Main(args ...any) *Node    { return Element("main", args...) }
func Nav(args ...any) *Node     { return Element("nav", args...) }
func Section(args ...any) *Node { return Element("section", args...) }
func Article(args ...any) *Node { return Element("article", args...) }

// Text elements

func Div(args ...any) *Node  { return Element("div", args...) }
func Span(args ...any) *Node { return Element("span", args...) }
func P(args ...any) *Node    { return Element("p", args...) }
func H1(args ...any) *Node   { return Element("h1", args...) }
func H2(args ...any) *Node   { return Element("h2", args...) }
func H3(args ...any) *Node   { return Element("h3", args...) }
func Pre(args ...any) *Node  { return Element("pre", args...) }
func Code(args ...any) *Node { return Element("code", args...) }
func Em(args ...any) *Node   { return Element("em", args...) }
func Br(args ...any) *Node   { return Element("br", args...) }
func Hr(args ...any) *Node   { return Element("hr", args...) }

// Anchor creates an <a> element (A creates attributes).
func Anchor(args ...any) *Node { return Element("a", args...) }

// List elements

func Ul(args ...any) *Node { return Element("ul", args...) }
func Ol(args ...any) *Node { return Element("ol", args...) }
func Li(args ...any) *Node { return Element("li", args...) }

// Media elements

func Img(args ...any) *Node { return Element("img", args...) }
