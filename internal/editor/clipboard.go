package editor

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/store"
)

// clipNode is a captured element subtree, detached from store ids so a
// paste can re-mint everything.
type clipNode struct {
	spec     store.ElementSpec
	binding  string // text-binding variable, if any
	loop     *ir.Loop
	bindings []*ir.Binding
	events   map[string][]*ir.Event
	children []*clipNode
}

// Copy captures a deep clone of the subtree rooted at id, including its
// bindings and events.
func (e *Editor) Copy(id string) error {
	node, err := e.capture(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.clipboard = node
	e.mu.Unlock()
	return nil
}

func (e *Editor) capture(id string) (*clipNode, error) {
	el, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	node := &clipNode{
		spec: store.ElementSpec{
			Kind:    el.Kind,
			Tag:     el.Tag,
			Text:    el.Text,
			Styles:  el.Styles,
			Classes: el.Classes,
			Attrs:   el.Attrs,
		},
		binding:  el.TextBinding,
		loop:     el.Loop,
		bindings: e.store.GetBindings(id),
		events:   e.store.Events(id),
	}
	for _, childID := range el.Children {
		child, err := e.capture(childID)
		if err != nil {
			continue
		}
		node.children = append(node.children, child)
	}
	return node, nil
}

// Paste re-creates the clipboard subtree under parent with fresh ids
// and returns the new root id.
func (e *Editor) Paste(parent string) (string, error) {
	e.mu.Lock()
	node := e.clipboard
	e.mu.Unlock()
	if node == nil {
		return "", fmt.Errorf("paste: clipboard is empty")
	}
	var newID string
	err := e.Apply("element_pasted", map[string]any{"parent": parent}, func(s *store.Store) error {
		id, err := e.paste(s, node, parent)
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (e *Editor) paste(s *store.Store, node *clipNode, parent string) (string, error) {
	spec := node.spec
	spec.Parent = parent
	id, err := s.Create(spec)
	if err != nil {
		return "", err
	}
	if node.binding != "" {
		if err := s.BindText(id, node.binding); err != nil {
			return "", err
		}
	}
	for _, b := range node.bindings {
		if b.Kind == ir.BindText {
			continue // re-created through BindText above
		}
		if _, err := s.Bind(id, b.Variable, b.Kind, b.Key); err != nil {
			return "", err
		}
	}
	for eventType, events := range node.events {
		for _, ev := range events {
			if _, err := s.On(id, eventType, ev.Action); err != nil {
				return "", err
			}
		}
	}
	if node.loop != nil {
		if err := s.SetLoop(id, store.LoopSpec{
			Source: node.loop.Source,
			Alias:  node.loop.Alias,
			Index:  node.loop.Index,
			Key:    node.loop.Key,
		}); err != nil {
			return "", err
		}
	}
	for _, child := range node.children {
		if _, err := e.paste(s, child, id); err != nil {
			return "", err
		}
	}
	return id, nil
}
