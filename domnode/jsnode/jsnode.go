//go:build js && wasm

// Package jsnode implements domnode.Node by wrapping syscall/js.Value
// nodes from a real browser document. The wrapping technique (and the
// identity-tag expando used for registry lookups, spec.md §9) follows
// atdiar-particleui's drivers/js/dom.go and textnode.go in the wider
// example pack, and honnef.co/go/js/dom/v2 (already a teacher
// dependency) for the handful of places a typed wrapper is simpler than
// raw syscall/js.
package jsnode

import (
	"strings"
	"syscall/js"

	"github.com/sessionlens/recorder/domnode"
	"honnef.co/go/js/dom/v2"
)

const identityProp = "__domrecId"

// Node wraps a single live DOM node. A fresh Node value is created on
// every traversal step (ParentNode, ChildNodes, ...), matching how
// syscall/js itself hands back a new js.Value per property access; the
// IdentityTag expando is what lets the Registry recognize "the same
// live node" across those fresh wrappers.
type Node struct {
	v js.Value
}

// Of wraps a raw js.Value as a domnode.Node.
func Of(v js.Value) domnode.Node { return wrap(v) }

func wrap(v js.Value) domnode.Node {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	n := Node{v}
	switch n.Type() {
	case domnode.ElementType:
		return Element{n}
	case domnode.TextType, domnode.CommentType, domnode.CDataType:
		return CharacterData{n}
	case domnode.DocumentTypeType:
		return DocType{n}
	case domnode.DocumentType_, domnode.ShadowRootType:
		return Document{n}
	default:
		return n
	}
}

func unwrapValue(n domnode.Node) js.Value {
	switch v := n.(type) {
	case Node:
		return v.v
	case Element:
		return v.v
	case CharacterData:
		return v.v
	case DocType:
		return v.v
	case Document:
		return v.v
	case nil:
		return js.Null()
	default:
		panic("jsnode: foreign domnode.Node implementation")
	}
}

func (n Node) Type() domnode.Type { return domnode.Type(n.v.Get("nodeType").Int()) }

func (n Node) IdentityTag() (string, bool) {
	tag := n.v.Get(identityProp)
	if tag.Type() != js.TypeString {
		return "", false
	}
	return tag.String(), true
}

func (n Node) SetIdentityTag(tag string) { n.v.Set(identityProp, tag) }

func (n Node) ParentNode() (domnode.Node, bool) {
	p := wrap(n.v.Get("parentNode"))
	return p, p != nil
}

func (n Node) PreviousSibling() (domnode.Node, bool) {
	p := wrap(n.v.Get("previousSibling"))
	return p, p != nil
}

func (n Node) NextSibling() (domnode.Node, bool) {
	p := wrap(n.v.Get("nextSibling"))
	return p, p != nil
}

func (n Node) ChildNodes() []domnode.Node {
	list := n.v.Get("childNodes")
	length := list.Get("length").Int()
	out := make([]domnode.Node, 0, length)
	for i := 0; i < length; i++ {
		out = append(out, wrap(list.Index(i)))
	}
	return out
}

func (n Node) GetRootNode() domnode.Node {
	opts := js.ValueOf(map[string]interface{}{"composed": true})
	return wrap(n.v.Call("getRootNode", opts))
}

func (n Node) AppendChild(child domnode.Node) { n.v.Call("appendChild", unwrapValue(child)) }

func (n Node) InsertBefore(newNode domnode.Node, reference domnode.Node) {
	n.v.Call("insertBefore", unwrapValue(newNode), unwrapValue(reference))
}

func (n Node) RemoveChild(child domnode.Node) { n.v.Call("removeChild", unwrapValue(child)) }

func (n Node) LastChild() (domnode.Node, bool) {
	l := wrap(n.v.Get("lastChild"))
	return l, l != nil
}

func (n Node) Raw() any { return n.v }

// Element wraps an Element node.
type Element struct{ Node }

func (e Element) TagName() string {
	return strings.ToUpper(e.v.Get("tagName").String())
}

func (e Element) NamespaceURI() string {
	ns := e.v.Get("namespaceURI")
	if ns.Type() != js.TypeString {
		return ""
	}
	return ns.String()
}

func (e Element) Attributes() []domnode.Attr {
	attrs := e.v.Get("attributes")
	length := attrs.Get("length").Int()
	out := make([]domnode.Attr, 0, length)
	for i := 0; i < length; i++ {
		a := attrs.Index(i)
		out = append(out, domnode.Attr{Name: a.Get("name").String(), Value: a.Get("value").String()})
	}
	return out
}

func (e Element) GetAttribute(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e Element) SetAttribute(name, value string) { e.v.Call("setAttribute", name, value) }

func (e Element) AttachShadow(mode string) domnode.Node {
	opts := js.ValueOf(map[string]interface{}{"mode": mode})
	return wrap(e.v.Call("attachShadow", opts))
}

func (e Element) ShadowRoot() (domnode.Node, bool) {
	sr := wrap(e.v.Get("shadowRoot"))
	return sr, sr != nil
}

// CharacterData wraps Text, Comment, and CDATASection nodes.
type CharacterData struct{ Node }

func (c CharacterData) Data() (string, bool) {
	d := c.v.Get("data")
	if d.Type() != js.TypeString {
		return "", false
	}
	return d.String(), true
}

func (c CharacterData) SetData(data string) { c.v.Set("data", data) }

// DocType wraps a DocumentType node.
type DocType struct{ Node }

func (d DocType) DoctypeName() string { return d.v.Get("name").String() }
func (d DocType) PublicID() string    { return d.v.Get("publicId").String() }
func (d DocType) SystemID() string    { return d.v.Get("systemId").String() }

// Document wraps a Document node (or the document owning an iframe's
// content window), exposing the creation operations the Rebuilder needs.
type Document struct{ Node }

// Wrap constructs a jsnode.Document from the global document or an
// iframe's contentDocument.
func Wrap(doc js.Value) domnode.Document { return Document{Node{doc}} }

// WrapDOMDocument adapts an honnef.co/go/js/dom/v2 Document, which several
// teacher packages already hold a reference to (dom.GetWindow().Document()).
func WrapDOMDocument(doc dom.Document) domnode.Document {
	return Document{Node{doc.Underlying()}}
}

// CompatMode returns document.compatMode for a real Document. A
// ShadowRoot has no compatMode; its shadowRoot.mode ("open"/"closed") is
// reported here instead, since serialize stores both in the same field
// (see serialize.Node.CompatMode).
func (d Document) CompatMode() string {
	if cm := d.v.Get("compatMode"); cm.Type() == js.TypeString {
		return cm.String()
	}
	return d.v.Get("mode").String()
}

func (d Document) URL() string { return d.v.Get("location").Get("href").String() }

func (d Document) CreateElement(tagName string) domnode.Element {
	return Element{Node{d.v.Call("createElement", strings.ToLower(tagName))}}
}

func (d Document) CreateTextNode(text string) domnode.CharacterData {
	return CharacterData{Node{d.v.Call("createTextNode", text)}}
}

func (d Document) CreateComment(text string) domnode.CharacterData {
	return CharacterData{Node{d.v.Call("createComment", text)}}
}

func (d Document) CreateDocumentType(name, publicID, systemID string) domnode.DocumentTypeNode {
	impl := d.v.Get("implementation")
	return DocType{Node{impl.Call("createDocumentType", name, publicID, systemID)}}
}
