// Package fakenode is an in-memory implementation of domnode.Node used by
// host-side tests (no browser, no syscall/js). It plays the same role the
// teacher's mockdom package plays for bridge.JSValue: a faithful-enough
// double that lets the capture/replay core's tests run under plain `go
// test`, grounded on mockdom.MockJSValue's identity-by-generated-tag
// technique (github.com/ozanturksever/uiwgo/mockdom).
package fakenode

import (
	"fmt"
	"sync"

	"github.com/sessionlens/recorder/domnode"
)

// node is the shared representation for every fake node kind.
type node struct {
	mu sync.Mutex

	typ domnode.Type
	tag string // identity tag, set by registry

	// Element fields
	tagName      string
	namespaceURI string
	attrs        []domnode.Attr
	shadowRoot   *node

	// CharacterData fields
	data    string
	hasData bool

	// DocumentType fields
	doctypeName string
	publicID    string
	systemID    string

	// Document fields
	compatMode string
	url        string

	parent   *node
	children []*node
}

// Doc is a fake Document, implementing domnode.Document.
type Doc struct{ *node }

// El is a fake Element, implementing domnode.Element.
type El struct{ *node }

// Text is a fake CharacterData node.
type Text struct{ *node }

// Doctype is a fake DocumentType node.
type Doctype struct{ *node }

// NewDocument creates a fresh fake document with the given compat mode and
// location URL (used to exercise the href-rewrite rule in tests).
func NewDocument(compatMode, url string) *Doc {
	return &Doc{&node{typ: domnode.DocumentType_, compatMode: compatMode, url: url}}
}

func (d *Doc) CompatMode() string { return d.compatMode }
func (d *Doc) URL() string        { return d.url }

func (d *Doc) CreateElement(tagName string) domnode.Element {
	return &El{&node{typ: domnode.ElementType, tagName: tagName}}
}

func (d *Doc) CreateTextNode(text string) domnode.CharacterData {
	return &Text{&node{typ: domnode.TextType, data: text, hasData: true}}
}

func (d *Doc) CreateComment(text string) domnode.CharacterData {
	return &Text{&node{typ: domnode.CommentType, data: text, hasData: true}}
}

func (d *Doc) CreateDocumentType(name, publicID, systemID string) domnode.DocumentTypeNode {
	return &Doctype{&node{typ: domnode.DocumentTypeType, doctypeName: name, publicID: publicID, systemID: systemID}}
}

func (e *El) TagName() string      { return e.tagName }
func (e *El) NamespaceURI() string { return e.namespaceURI }

// SetNamespaceURI is a test-only helper (fakenode has no real SVG parser).
func (e *El) SetNamespaceURI(ns string) { e.namespaceURI = ns }

func (e *El) Attributes() []domnode.Attr {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domnode.Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

func (e *El) GetAttribute(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *El) SetAttribute(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, domnode.Attr{Name: name, Value: value})
}

func (e *El) AttachShadow(mode string) domnode.Node {
	sr := &node{typ: domnode.ShadowRootType, compatMode: mode}
	e.shadowRoot = sr
	return &Doc{sr}
}

func (e *El) ShadowRoot() (domnode.Node, bool) {
	if e.shadowRoot == nil {
		return nil, false
	}
	return &Doc{e.shadowRoot}, true
}

func (t *Text) Data() (string, bool) { return t.data, t.hasData }
func (t *Text) SetData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data, t.hasData = data, true
}

func (dt *Doctype) DoctypeName() string { return dt.doctypeName }
func (dt *Doctype) PublicID() string    { return dt.publicID }
func (dt *Doctype) SystemID() string    { return dt.systemID }

// --- domnode.Node, shared across all kinds ---

func (n *node) Type() domnode.Type { return n.typ }

func (n *node) IdentityTag() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tag, n.tag != ""
}

func (n *node) SetIdentityTag(tag string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tag = tag
}

func wrap(n *node) domnode.Node {
	if n == nil {
		return nil
	}
	switch n.typ {
	case domnode.ElementType:
		return &El{n}
	case domnode.TextType, domnode.CommentType, domnode.CDataType:
		return &Text{n}
	case domnode.DocumentTypeType:
		return &Doctype{n}
	case domnode.DocumentType_, domnode.ShadowRootType:
		return &Doc{n}
	default:
		panic(fmt.Sprintf("fakenode: unknown node type %d", n.typ))
	}
}

func unwrap(n domnode.Node) *node {
	switch v := n.(type) {
	case *El:
		return v.node
	case *Text:
		return v.node
	case *Doctype:
		return v.node
	case *Doc:
		return v.node
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("fakenode: foreign node type %T", n))
	}
}

func (n *node) ParentNode() (domnode.Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent == nil {
		return nil, false
	}
	return wrap(n.parent), true
}

func (n *node) PreviousSibling() (domnode.Node, bool) {
	n.mu.Lock()
	parent := n.parent
	n.mu.Unlock()
	if parent == nil {
		return nil, false
	}
	parent.mu.Lock()
	defer parent.mu.Unlock()
	for i, c := range parent.children {
		if c == n {
			if i == 0 {
				return nil, false
			}
			return wrap(parent.children[i-1]), true
		}
	}
	return nil, false
}

func (n *node) NextSibling() (domnode.Node, bool) {
	n.mu.Lock()
	parent := n.parent
	n.mu.Unlock()
	if parent == nil {
		return nil, false
	}
	parent.mu.Lock()
	defer parent.mu.Unlock()
	for i, c := range parent.children {
		if c == n {
			if i == len(parent.children)-1 {
				return nil, false
			}
			return wrap(parent.children[i+1]), true
		}
	}
	return nil, false
}

func (n *node) ChildNodes() []domnode.Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domnode.Node, len(n.children))
	for i, c := range n.children {
		out[i] = wrap(c)
	}
	return out
}

// GetRootNode walks parent pointers to the top and returns that node. For
// a node inside a shadow tree the top is the shadow root made by
// AttachShadow; the walk does not continue through the shadow host.
func (n *node) GetRootNode() domnode.Node {
	cur := n
	for {
		cur.mu.Lock()
		p := cur.parent
		cur.mu.Unlock()
		if p == nil {
			return wrap(cur)
		}
		cur = p
	}
}

func (n *node) AppendChild(child domnode.Node) {
	c := unwrap(child)
	n.mu.Lock()
	defer n.mu.Unlock()
	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
	n.children = append(n.children, c)
}

func (n *node) InsertBefore(newNode domnode.Node, reference domnode.Node) {
	c := unwrap(newNode)
	n.mu.Lock()
	defer n.mu.Unlock()
	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
	if reference == nil {
		n.children = append(n.children, c)
		return
	}
	ref := unwrap(reference)
	for i, ch := range n.children {
		if ch == ref {
			n.children = append(n.children[:i], append([]*node{c}, n.children[i:]...)...)
			return
		}
	}
	n.children = append(n.children, c)
}

func (n *node) RemoveChild(child domnode.Node) {
	c := unwrap(child)
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.mu.Lock()
			c.parent = nil
			c.mu.Unlock()
			return
		}
	}
}

func (n *node) LastChild() (domnode.Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.children) == 0 {
		return nil, false
	}
	return wrap(n.children[len(n.children)-1]), true
}

func (n *node) Raw() any { return n }
