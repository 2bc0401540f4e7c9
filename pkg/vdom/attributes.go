package vdom

import "strings"

// ID sets the id attribute.
func ID(id string) Attr { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return A("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return A("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return A("data-"+key, value) }

// Link attributes

func Href(url string) Attr { return A("href", url) }
func Src(url string) Attr  { return A("src", url) }
func Rel(rel string) Attr  { return A("rel", rel) }
func Alt(text string) Attr { return A("alt", text) }

// Document attributes

func Lang(lang string) Attr       { return A("lang", lang) }
func Charset(charset string) Attr { return A("charset", charset) }
func Name(name string) Attr       { return A("name", name) }
func Content(content string) Attr { return A("content", content) }
func Type(typ string) Attr        { return A("type", typ) }

// Bool creates a valueless attribute such as defer or async. It renders
// as key="".
func Bool(key string) Attr { return A(key, "") }
