// Package rebuild constructs a live DOM subtree from a serialized map
// inside a target document, populating a replay registry (spec.md
// §4.7).
package rebuild

import (
	"fmt"
	"strings"

	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/serialize"
)

// DomError wraps a DOM API rejection encountered while building a node
// (spec.md §7).
type DomError struct {
	Op  string
	Err error
}

func (e *DomError) Error() string { return fmt.Sprintf("rebuild: %s: %v", e.Op, e.Err) }
func (e *DomError) Unwrap() error { return e.Err }

// Registry is the subset of registry.Replay the Rebuilder needs.
type Registry interface {
	Put(id serialize.NodeID, n domnode.Node)
	LookupNode(id serialize.NodeID) (domnode.Node, bool)
	LookupSerialized(id serialize.NodeID) (*serialize.Node, bool)
	PutSerialized(rec *serialize.Node)
	MergeSerialized(m map[serialize.NodeID]*serialize.Node)
}

// Rebuilder builds a live subtree from a serialized map (spec.md §4.7).
type Rebuilder struct {
	reg Registry
}

// New builds a Rebuilder over reg.
func New(reg Registry) *Rebuilder {
	return &Rebuilder{reg: reg}
}

type frame struct {
	parent   domnode.Node
	children []serialize.NodeID
}

// Rebuild clears target, merges received into the replay registry, and
// constructs the tree rooted at serialize.RootNodeID inside target
// (spec.md §4.7 steps 1-3).
func (r *Rebuilder) Rebuild(target domnode.Document, received map[serialize.NodeID]*serialize.Node) error {
	for {
		last, ok := target.LastChild()
		if !ok {
			break
		}
		target.RemoveChild(last)
	}

	r.reg.MergeSerialized(received)

	rootRec, ok := r.reg.LookupSerialized(serialize.RootNodeID)
	if !ok {
		return &DomError{Op: "rebuild", Err: fmt.Errorf("missing root record %d", serialize.RootNodeID)}
	}
	r.reg.Put(serialize.RootNodeID, target)

	stack := []frame{{parent: target, children: rootRec.ChildIDs}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.children) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		childID := top.children[0]
		top.children = top.children[1:]

		rec, ok := r.reg.LookupSerialized(childID)
		if !ok {
			return &DomError{Op: "rebuild", Err: fmt.Errorf("missing record for id %d", childID)}
		}
		built, err := r.Build(rec, top.parent, nil, nil)
		if err != nil {
			return err
		}
		r.reg.Put(childID, built)
		stack = append(stack, frame{parent: built, children: rec.ChildIDs})
	}

	return nil
}

// Build constructs a single live node for rec, attaching it relative to
// parent/prevSibling/nextSibling per spec.md §4.7.1. Document and
// ShadowRoot-shaped records (is_shadow_host) are special-cased: a
// Document record returns parent unchanged (the document is the
// iframe's own document); a shadow-host record attaches a shadow root to
// parent and returns that, per SPEC_FULL.md §4.7.2's resolution of the
// shadow-root open question.
func (r *Rebuilder) Build(rec *serialize.Node, parent, prevSibling, nextSibling domnode.Node) (domnode.Node, error) {
	switch rec.Kind {
	case serialize.KindDocument:
		if rec.IsShadowHost {
			el, ok := domnode.AsElement(parent)
			if !ok {
				return nil, &DomError{Op: "attachShadow", Err: fmt.Errorf("parent of shadow host %d is not an element", rec.ID)}
			}
			mode := rec.CompatMode
			if mode == "" {
				mode = "open"
			}
			return el.AttachShadow(mode), nil
		}
		return parent, nil

	case serialize.KindElement:
		return r.buildElement(rec, parent, prevSibling, nextSibling)

	case serialize.KindText, serialize.KindComment:
		return r.buildCharacterData(rec, parent)

	case serialize.KindDocumentType:
		doc, ok := domnode.AsDocument(parent)
		if !ok {
			return nil, &DomError{Op: "createDocumentType", Err: fmt.Errorf("parent of doctype %d is not a document", rec.ID)}
		}
		return doc.CreateDocumentType(rec.DoctypeName, rec.PublicID, rec.SystemID), nil

	case serialize.KindCData:
		return nil, &DomError{Op: "build", Err: fmt.Errorf("CData unsupported in replay (node %d)", rec.ID)}

	default:
		return nil, &DomError{Op: "build", Err: fmt.Errorf("unknown kind %q for node %d", rec.Kind, rec.ID)}
	}
}

func ownerDocument(parent domnode.Node) (domnode.Document, error) {
	if doc, ok := domnode.AsDocument(parent); ok {
		return doc, nil
	}
	for cur := parent; cur != nil; {
		if doc, ok := domnode.AsDocument(cur); ok {
			return doc, nil
		}
		p, ok := cur.ParentNode()
		if !ok {
			break
		}
		cur = p
	}
	return nil, fmt.Errorf("no owning document reachable from parent")
}

func (r *Rebuilder) buildElement(rec *serialize.Node, parent, prevSibling, nextSibling domnode.Node) (domnode.Node, error) {
	doc, err := ownerDocument(parent)
	if err != nil {
		return nil, &DomError{Op: "createElement", Err: err}
	}

	tag := "div"
	switch {
	case rec.IsCustom:
		tag = "div"
	case rec.TagName == "SCRIPT":
		tag = "noscript"
	default:
		tag = strings.ToLower(rec.TagName)
	}

	el := doc.CreateElement(tag)
	attach(parent, el, prevSibling, nextSibling)
	for _, a := range rec.Attributes {
		el.SetAttribute(a.Name, a.Value)
	}
	return el, nil
}

func (r *Rebuilder) buildCharacterData(rec *serialize.Node, parent domnode.Node) (domnode.Node, error) {
	doc, err := ownerDocument(parent)
	if err != nil {
		return nil, &DomError{Op: "createCharacterData", Err: err}
	}

	text := ""
	if rec.TextContent != nil {
		text = *rec.TextContent
	}

	var n domnode.CharacterData
	if rec.Kind == serialize.KindComment {
		n = doc.CreateComment(text)
	} else {
		n = doc.CreateTextNode(text)
	}
	parent.AppendChild(n)
	return n, nil
}

// attach places child relative to siblings: after prevSibling, else
// before nextSibling, else appended to parent (spec.md §4.7.1).
func attach(parent, child, prevSibling, nextSibling domnode.Node) {
	if prevSibling != nil {
		if next, ok := prevSibling.NextSibling(); ok {
			parent.InsertBefore(child, next)
			return
		}
		parent.AppendChild(child)
		return
	}
	if nextSibling != nil {
		parent.InsertBefore(child, nextSibling)
		return
	}
	parent.AppendChild(child)
}
