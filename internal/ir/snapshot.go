package ir

import "sort"

// Snapshot is a frozen view of a document. The wrapped document is an
// exclusive deep clone, never aliased by the store that produced it, and
// the unexported field keeps consumers on a method surface with no
// mutators. Go has no runtime deep-freeze, and the accessors return
// pointers and slices into the clone without copying, so a caller can
// still change the snapshot's contents through them; such changes never
// reach the store.
type Snapshot struct {
	doc *Document
}

// NewSnapshot freezes a deep clone of doc.
func NewSnapshot(doc *Document) *Snapshot {
	return &Snapshot{doc: doc.Clone()}
}

// Meta returns the document metadata.
func (s *Snapshot) Meta() Meta {
	return s.doc.Meta
}

// RootID returns the root element id, or "" when the tree is empty.
func (s *Snapshot) RootID() string {
	return s.doc.Elements.RootID
}

// Element returns the element with the given id, or nil.
func (s *Snapshot) Element(id string) *Element {
	return s.doc.Element(id)
}

// ElementIDs returns all element ids in sorted order.
func (s *Snapshot) ElementIDs() []string {
	ids := make([]string, 0, len(s.doc.Elements.Nodes))
	for id := range s.doc.Elements.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Variable looks a variable up by name across all partitions.
func (s *Snapshot) Variable(name string) (*Variable, bool) {
	return s.doc.FindVariable(name)
}

// Variables returns every variable sorted by name.
func (s *Snapshot) Variables() []*Variable {
	return s.doc.AllVariables()
}

// Bindings returns the bindings in declaration order.
func (s *Snapshot) Bindings() []*Binding {
	return s.doc.Bindings
}

// EventTypes returns the event type keys in sorted order.
func (s *Snapshot) EventTypes() []string {
	return s.doc.EventTypes()
}

// EventsOf returns the events registered for one event type.
func (s *Snapshot) EventsOf(eventType string) []*Event {
	return s.doc.Events[eventType]
}

// Group returns the conditional group with the given id.
func (s *Snapshot) Group(id string) (*Group, bool) {
	g, ok := s.doc.ConditionalGroups[id]
	return g, ok
}

// GroupIDs returns the conditional group ids in sorted order.
func (s *Snapshot) GroupIDs() []string {
	return s.doc.GroupIDs()
}

// Export returns a deep clone of the underlying document, detaching the
// caller from the frozen view.
func (s *Snapshot) Export() *Document {
	return s.doc.Clone()
}
