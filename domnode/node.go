// Package domnode abstracts a live DOM node so the capture/replay core can
// run against a real browser document (domnode/jsnode, js&&wasm) or an
// in-memory fake (domnode/fakenode, host tests) without duplicating logic.
//
// The split mirrors the teacher's bridge/mockdom pair, generalized from
// Element-only coverage to every node kind spec.md's Serializer needs
// (Document, Element, Text, Comment, CData, DocumentType).
package domnode

// Type mirrors the DOM Node.nodeType codes named in spec.md §4.2.
type Type int

const (
	ElementType      Type = 1
	TextType         Type = 3
	CDataType        Type = 4
	CommentType      Type = 8
	DocumentType_    Type = 9
	DocumentTypeType Type = 10

	// ShadowRootType is the real DOM nodeType of a ShadowRoot (11). It is
	// not one of the six codes spec.md's Serializer table enumerates;
	// serialize treats it as a Document-shaped root per SPEC_FULL.md's
	// resolution of the shadow-root open question (spec.md §9).
	ShadowRootType Type = 11
)

// Attr is a single (name, value) attribute pair in source order.
type Attr struct {
	Name  string
	Value string
}

// Node is the minimal live-node surface every component of the
// capture/replay core needs. A live node may be wrapped by more than one
// Go value over its lifetime (e.g. each syscall/js property access returns
// a fresh wrapper), so identity for the Registry (spec.md §4.1, §9) is
// established through IdentityTag/SetIdentityTag, an expando-style tag
// written onto the underlying live object, never through Go pointer
// equality of the Node value itself.
type Node interface {
	// Type returns the DOM node-type code (spec.md §4.2).
	Type() Type

	// IdentityTag returns the tag previously stored with SetIdentityTag,
	// if any. Used by registry to simulate identity-keyed lookup.
	IdentityTag() (string, bool)
	// SetIdentityTag stores a registry-assigned identity tag on the
	// underlying live object.
	SetIdentityTag(tag string)

	ParentNode() (Node, bool)
	PreviousSibling() (Node, bool)
	NextSibling() (Node, bool)
	ChildNodes() []Node

	// GetRootNode returns the node's composed root (spec.md glossary):
	// the root reached by traversing out of shadow roots through their
	// hosts. For a node with no shadow involvement this is the owning
	// Document.
	GetRootNode() Node

	AppendChild(child Node)
	InsertBefore(newNode Node, reference Node)
	RemoveChild(child Node)
	LastChild() (Node, bool)

	// Raw exposes the underlying platform value for advanced use
	// (diagnostics, tests); callers outside domnode should not depend on
	// its concrete type.
	Raw() any
}

// Element is a Node of ElementType.
type Element interface {
	Node

	TagName() string // upper-case, per spec.md §3
	NamespaceURI() string
	Attributes() []Attr
	GetAttribute(name string) (string, bool)
	SetAttribute(name, value string)

	// AttachShadow creates and returns an open/closed shadow root
	// attached to this element (spec.md §9 open question, resolved in
	// SPEC_FULL.md §4.7.2 to "rebuild shadow roots").
	AttachShadow(mode string) Node

	// ShadowRoot returns this element's attached shadow root, if any.
	// Walkers (snapshot/observe) use this to descend into shadow trees,
	// since a host's ChildNodes never includes its shadow tree.
	ShadowRoot() (Node, bool)
}

// CharacterData is a Node of TextType, CommentType, or CDataType.
type CharacterData interface {
	Node

	Data() (string, bool) // optional per spec.md §3
	SetData(data string)
}

// DocumentTypeNode is a Node of DocumentTypeType.
type DocumentTypeNode interface {
	Node

	DoctypeName() string
	PublicID() string
	SystemID() string
}

// Document is a Node of DocumentType_, plus node-factory and
// document-level metadata operations needed by the Rebuilder (§4.7) and
// the Serializer's href-rewrite rule (§4.2).
type Document interface {
	Node

	CompatMode() string
	// URL is the document's current location URL (used to rewrite href
	// attribute values at capture time).
	URL() string

	CreateElement(tagName string) Element
	CreateTextNode(text string) CharacterData
	CreateComment(text string) CharacterData
	CreateDocumentType(name, publicID, systemID string) DocumentTypeNode
}

// AsElement is a convenience type assertion helper.
func AsElement(n Node) (Element, bool) {
	e, ok := n.(Element)
	return e, ok
}

// AsCharacterData is a convenience type assertion helper.
func AsCharacterData(n Node) (CharacterData, bool) {
	cd, ok := n.(CharacterData)
	return cd, ok
}

// AsDocumentType is a convenience type assertion helper.
func AsDocumentType(n Node) (DocumentTypeNode, bool) {
	dt, ok := n.(DocumentTypeNode)
	return dt, ok
}

// AsDocument is a convenience type assertion helper.
func AsDocument(n Node) (Document, bool) {
	d, ok := n.(Document)
	return d, ok
}

// SVGNamespaceURI is the namespace of SVG elements, used to compute
// is_svg (spec.md §4.2).
const SVGNamespaceURI = "http://www.w3.org/2000/svg"
