//go:build js && wasm

// Package observe adapts the browser's MutationObserver into
// wire.MutationEvent values (spec.md §4.4). It is the direct successor
// of the teacher's dom.MutationObserverManager/ScopeRegistry
// (dom/mutation_observer.go): the js.Global().Get("MutationObserver")
// wiring and js.Func callback lifetime management are kept; what the
// callback does with each record is rewritten from "dispose cleanup
// scopes on removal" to "serialize and emit a MutationEvent".
package observe

import (
	"syscall/js"

	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/domnode/jsnode"
	"github.com/sessionlens/recorder/idclock"
	"github.com/sessionlens/recorder/reactivity"
	"github.com/sessionlens/recorder/serialize"
	"github.com/sessionlens/recorder/snapshot"
	"github.com/sessionlens/recorder/wire"
)

// Registry is the subset of registry.Capture the Observer needs.
type Registry interface {
	snapshot.Registry
	LookupID(n domnode.Node) (serialize.NodeID, bool)
	LookupNode(id serialize.NodeID) (domnode.Node, bool)
	LookupSerialized(id serialize.NodeID) (*serialize.Node, bool)
	Evict(id serialize.NodeID)
}

// Emitter receives each translated mutation event.
type Emitter interface {
	Emit(ev wire.MutationEvent) error
}

// Observer watches one subtree and emits MutationEvents for every
// observer notification (spec.md §4.4).
type Observer struct {
	reg    Registry
	ser    *serialize.Serializer
	clock  *idclock.Source
	emit   Emitter
	scope  *reactivity.CleanupScope
	jsObs  js.Value
	jsFunc js.Func
}

// Observe starts observing target (a live element or document) and its
// descendants. Disconnection is registered with scope so the observer
// callback's closure is released no later than the scope's disposal
// (spec.md §9 "observer callback lifetime").
func Observe(target domnode.Node, reg Registry, ser *serialize.Serializer, clock *idclock.Source, emit Emitter, scope *reactivity.CleanupScope) *Observer {
	o := &Observer{reg: reg, ser: ser, clock: clock, emit: emit, scope: scope}

	o.jsFunc = js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		records := args[0]
		length := records.Get("length").Int()
		for i := 0; i < length; i++ {
			o.handleRecord(records.Index(i))
		}
		return nil
	})

	o.jsObs = js.Global().Get("MutationObserver").New(o.jsFunc)
	o.jsObs.Call("observe", rawValue(target), js.ValueOf(map[string]any{
		"attributes":            true,
		"attributeOldValue":     true,
		"characterData":         true,
		"characterDataOldValue": true,
		"childList":             true,
		"subtree":               true,
		"animations":            true,
	}))

	scope.RegisterDisposer(func() {
		o.Disconnect()
	})

	return o
}

// Disconnect stops observing and releases the callback closure.
func (o *Observer) Disconnect() {
	o.jsObs.Call("disconnect")
	o.jsFunc.Release()
}

func rawValue(n domnode.Node) js.Value {
	v, ok := n.Raw().(js.Value)
	if !ok {
		return js.Null()
	}
	return v
}

func (o *Observer) handleRecord(rec js.Value) {
	targetNode := jsnode.Of(rec.Get("target"))
	targetID, ok := o.reg.LookupID(targetNode)
	if !ok {
		return // UnknownTarget (spec.md §7): drop.
	}

	switch rec.Get("type").String() {
	case "attributes":
		o.handleAttributes(rec, targetID, targetNode)
	case "characterData":
		o.handleCharacterData(targetID, targetNode)
	case "childList":
		o.handleChildList(rec, targetID)
	}
}

func (o *Observer) handleAttributes(rec js.Value, targetID serialize.NodeID, targetNode domnode.Node) {
	el, ok := domnode.AsElement(targetNode)
	if !ok {
		return
	}
	name := rec.Get("attributeName").String()
	value, _ := el.GetAttribute(name)

	ev := wire.MutationEvent{
		Type:      wire.EventAttributes,
		Millis:    o.clock.Next(),
		TargetID:  targetID,
		AttrName:  name,
		AttrValue: value,
	}
	o.reg.UpdateSerialized(targetID, func(n *serialize.Node) {
		n.ReplaceAttribute(name, value)
	})
	o.emit.Emit(ev)
}

func (o *Observer) handleCharacterData(targetID serialize.NodeID, targetNode domnode.Node) {
	cd, ok := domnode.AsCharacterData(targetNode)
	if !ok {
		return
	}
	text, _ := cd.Data()

	ev := wire.MutationEvent{
		Type:        wire.EventCharacterData,
		Millis:      o.clock.Next(),
		TargetID:    targetID,
		TextContent: text,
	}
	o.reg.UpdateSerialized(targetID, func(n *serialize.Node) {
		n.TextContent = &text
	})
	o.emit.Emit(ev)
}

func (o *Observer) handleChildList(rec js.Value, targetID serialize.NodeID) {
	added := rec.Get("addedNodes")
	removed := rec.Get("removedNodes")
	addedLen := added.Get("length").Int()
	removedLen := removed.Get("length").Int()

	if addedLen == 0 && removedLen == 0 {
		return // MalformedRecord (spec.md §7): drop.
	}

	prevID, hasPrev := o.siblingID(rec.Get("previousSibling"))
	nextID, hasNext := o.siblingID(rec.Get("nextSibling"))

	if addedLen > 0 {
		o.handleAdded(targetID, added, addedLen, prevID, hasPrev, nextID, hasNext)
	}
	if removedLen > 0 {
		o.handleRemoved(targetID, removed, removedLen, prevID, hasPrev, nextID, hasNext)
	}
}

func (o *Observer) siblingID(v js.Value) (serialize.NodeID, bool) {
	if v.IsNull() || v.IsUndefined() {
		return 0, false
	}
	n := jsnode.Of(v)
	return o.reg.LookupID(n)
}

// handleAdded runs the added-subtree walk (spec.md §4.4) for each added
// node and emits one ChildListAdded event covering all of them.
func (o *Observer) handleAdded(targetID serialize.NodeID, added js.Value, length int, prevID serialize.NodeID, hasPrev bool, nextID serialize.NodeID, hasNext bool) {
	snap := snapshot.New(o.reg, o.ser)
	addedMap := make(map[serialize.NodeID]*serialize.Node)
	var nodeIDs []serialize.NodeID

	for i := 0; i < length; i++ {
		root := jsnode.Of(added.Index(i))
		created, err := snap.WalkSubtree(root, targetID)
		if err != nil {
			continue // UnsupportedNode: skip this added node, keep going.
		}
		nodeIDs = append(nodeIDs, created[0]) // only the walked root is a direct child of target
		for _, id := range created {
			if rec, ok := o.reg.LookupSerialized(id); ok {
				addedMap[id] = rec
			}
		}
	}

	ev := wire.MutationEvent{
		Type:     wire.EventChildListAdded,
		Millis:   o.clock.Next(),
		TargetID: targetID,
		Nodes:    nodeIDs,
		AddedMap: addedMap,
	}
	if hasPrev {
		ev.PrevSiblingID = &prevID
	}
	if hasNext {
		ev.NextSiblingID = &nextID
	}
	o.emit.Emit(ev)
}

func (o *Observer) handleRemoved(targetID serialize.NodeID, removed js.Value, length int, prevID serialize.NodeID, hasPrev bool, nextID serialize.NodeID, hasNext bool) {
	var nodeIDs []serialize.NodeID
	for i := 0; i < length; i++ {
		n := jsnode.Of(removed.Index(i))
		id, ok := o.reg.LookupID(n)
		if !ok {
			continue
		}
		nodeIDs = append(nodeIDs, id)
		o.evictSubtree(id)
	}

	ev := wire.MutationEvent{
		Type:     wire.EventChildListRemoved,
		Millis:   o.clock.Next(),
		TargetID: targetID,
		Nodes:    nodeIDs,
	}
	if hasPrev {
		ev.PrevSiblingID = &prevID
	}
	if hasNext {
		ev.NextSiblingID = &nextID
	}
	o.emit.Emit(ev)
}

// evictSubtree recursively removes id and its recorded children from
// both capture registries (spec.md §4.1 lifecycle, §4.4 removed-subtree
// rule).
func (o *Observer) evictSubtree(id serialize.NodeID) {
	rec, ok := o.reg.LookupSerialized(id)
	if !ok {
		o.reg.Evict(id)
		return
	}
	for _, childID := range rec.ChildIDs {
		o.evictSubtree(childID)
	}
	o.reg.Evict(id)
}
