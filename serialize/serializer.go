package serialize

import (
	"fmt"
	"strings"

	"github.com/sessionlens/recorder/domnode"
)

// UnsupportedNodeError is returned when a live node carries a DOM
// node-type code the Serializer does not recognize (spec.md §4.2).
type UnsupportedNodeError struct {
	NodeType domnode.Type
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("serialize: unsupported node type %d", e.NodeType)
}

// RootResolver tracks the composed-root registrations a Serializer needs
// (spec.md's "roots: ordered list of (root node, id)"). The capture
// registry implements this; Serializer takes it as a narrow interface so
// the two packages do not import each other.
type RootResolver interface {
	// RootID returns the id already registered for root, and whether one
	// was found.
	RootID(root domnode.Node) (NodeID, bool)
	// RegisterRoot records that root is a composed root identified by id.
	RegisterRoot(root domnode.Node, id NodeID)
}

// Serializer builds a serialize.Node from a live domnode.Node (spec.md
// §4.2). A Serializer is bound to one document, since the href-rewrite
// rule needs that document's current URL.
type Serializer struct {
	roots  RootResolver
	docURL string
}

// New builds a Serializer whose href rewrite rule prepends docURL (with
// any trailing slash removed) to href attribute values, and whose
// composed-root bookkeeping is delegated to roots.
func New(roots RootResolver, docURL string) *Serializer {
	return &Serializer{roots: roots, docURL: strings.TrimSuffix(docURL, "/")}
}

// Serialize constructs a tagged serialized record for n, assigning it
// id. Child lists are left empty; the Snapshotter/Observer populate them
// as they visit children.
func (s *Serializer) Serialize(n domnode.Node, id NodeID) (*Node, error) {
	out := &Node{ID: id}

	composedRoot := n.GetRootNode()
	s.applyRootDetermination(out, n, id, composedRoot)

	switch n.Type() {
	case domnode.ElementType:
		el, _ := domnode.AsElement(n)
		s.serializeElement(out, el)
	case domnode.TextType:
		out.Kind = KindText
		s.serializeCharacterData(out, n)
	case domnode.CommentType:
		out.Kind = KindComment
		s.serializeCharacterData(out, n)
	case domnode.CDataType:
		out.Kind = KindCData
		s.serializeCharacterData(out, n)
	case domnode.DocumentType_, domnode.ShadowRootType:
		// A ShadowRoot's DOM nodeType (11) isn't one of spec.md's six
		// node-type codes; it is serialized as a Document variant whose
		// CompatMode field carries the shadow root's mode instead of a
		// document compat mode (SPEC_FULL.md §4.7.2).
		out.Kind = KindDocument
		if doc, ok := domnode.AsDocument(n); ok {
			out.CompatMode = doc.CompatMode()
		}
	case domnode.DocumentTypeType:
		out.Kind = KindDocumentType
		if dt, ok := domnode.AsDocumentType(n); ok {
			out.DoctypeName = dt.DoctypeName()
			out.PublicID = dt.PublicID()
			out.SystemID = dt.SystemID()
		}
	default:
		return nil, &UnsupportedNodeError{NodeType: n.Type()}
	}

	return out, nil
}

func (s *Serializer) applyRootDetermination(out *Node, n domnode.Node, id NodeID, composedRoot domnode.Node) {
	isRootItself := sameNode(n, composedRoot)
	if isRootItself {
		if _, found := s.roots.RootID(composedRoot); !found {
			s.roots.RegisterRoot(composedRoot, id)
		}
		if composedRoot.Type() != domnode.DocumentType_ {
			out.IsShadowHost = true
		}
	}
	if composedRoot.Type() != domnode.DocumentType_ {
		out.IsShadow = true
	}
	if rootID, found := s.roots.RootID(composedRoot); found {
		out.RootID = rootID
	}
}

// sameNode compares identity tags when both are present (the reliable
// case once either side has been registered); it falls back to raw
// pointer/value identity via Raw() otherwise, which holds for the two
// implementations in this module (fakenode pointers, jsnode js.Value
// equality is not reliable, so jsnode callers should have tagged both
// sides by the time this runs in the normal Snapshotter/Observer walk).
func sameNode(a, b domnode.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.IdentityTag(); ok {
		if bt, ok := b.IdentityTag(); ok {
			return at == bt
		}
	}
	return a.Raw() == b.Raw()
}

func (s *Serializer) serializeElement(out *Node, el domnode.Element) {
	out.Kind = KindElement
	out.TagName = strings.ToUpper(el.TagName())
	out.IsSVG = el.NamespaceURI() == domnode.SVGNamespaceURI
	out.IsCustom = !IsStandardHTMLTag(out.TagName)
	out.NeedBlock = false

	for _, a := range el.Attributes() {
		v := a.Value
		if strings.EqualFold(a.Name, "href") {
			v = s.docURL + v
		}
		out.Attributes = append(out.Attributes, Attr{Name: a.Name, Value: v})
	}
}

func (s *Serializer) serializeCharacterData(out *Node, n domnode.Node) {
	cd, ok := domnode.AsCharacterData(n)
	if !ok {
		return
	}
	if text, present := cd.Data(); present {
		out.TextContent = &text
	}
}
