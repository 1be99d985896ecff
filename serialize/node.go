// Package serialize converts a live domnode.Node into a tagged
// serialized node record (spec.md §4.2) and holds the fixed HTML tag
// table used to compute is_custom (spec.md §6).
package serialize

// NodeID is a capture-assigned node identifier (spec.md §3). Identifier 0
// is reserved for the snapshot root.
type NodeID uint32

// RootNodeID is the identifier reserved for the snapshot root.
const RootNodeID NodeID = 0

// Kind discriminates the tagged union of serialized node variants.
type Kind string

const (
	KindDocument     Kind = "document"
	KindElement      Kind = "element"
	KindText         Kind = "text"
	KindComment      Kind = "comment"
	KindCData        Kind = "cdata"
	KindDocumentType Kind = "doctype"
)

// Attr is a single (name, value) attribute pair, preserved in source
// order.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node is the tagged-union serialized record for one captured DOM node
// (spec.md §3). It is a struct rather than an interface so the wire
// encoding (package wire) and the registry's storage map have a
// well-defined zero value and never need type switches over unexported
// concrete types.
type Node struct {
	ID   NodeID `json:"id"`
	Kind Kind   `json:"kind"`

	// Common fields, present on every variant.
	RootID       NodeID `json:"rootId"`
	IsShadowHost bool   `json:"isShadowHost,omitempty"`
	IsShadow     bool   `json:"isShadow,omitempty"`

	// Document
	CompatMode string   `json:"compatMode,omitempty"`
	ChildIDs   []NodeID `json:"childIds,omitempty"`

	// Element (ChildIDs above is shared with Document)
	TagName    string `json:"tagName,omitempty"`
	Attributes []Attr `json:"attributes,omitempty"`
	IsSVG      bool   `json:"isSvg,omitempty"`
	IsCustom   bool   `json:"isCustom,omitempty"`
	NeedBlock  bool   `json:"needBlock,omitempty"`

	// Text / Comment / CData. A nil pointer means "absent", matching
	// spec.md's `text_content: optional string`.
	TextContent *string `json:"textContent,omitempty"`

	// DocumentType
	DoctypeName string `json:"doctypeName,omitempty"`
	PublicID    string `json:"publicId,omitempty"`
	SystemID    string `json:"systemId,omitempty"`
}

// AppendChildID appends id to the node's child list. Valid for Document
// and Element variants; a no-op otherwise (callers only invoke it on
// nodes known to carry children).
func (n *Node) AppendChildID(id NodeID) {
	n.ChildIDs = append(n.ChildIDs, id)
}

// ReplaceAttribute sets name to value, replacing an existing entry with
// the same name in place if present, or appending it otherwise — the
// exact rule spec.md §4.8 requires for Attributes mutation application.
func (n *Node) ReplaceAttribute(name, value string) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			n.Attributes = append(n.Attributes[:i], n.Attributes[i+1:]...)
			break
		}
	}
	n.Attributes = append(n.Attributes, Attr{Name: name, Value: value})
}
