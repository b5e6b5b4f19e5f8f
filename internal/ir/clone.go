package ir

// Deep cloning is the backbone of snapshots, history entries and query
// results: structurally recursive, maps and slices rebuilt, primitives
// passed through. A clone shares no aliasing with its source.

// CloneValue deep-clones a JSON-shaped value (maps, slices, primitives).
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Clone returns a deep copy of the set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Clone returns a deep copy of the variable.
func (v *Variable) Clone() *Variable {
	if v == nil {
		return nil
	}
	out := *v
	out.Init = CloneValue(v.Init)
	return &out
}

// Clone returns a deep copy of the control descriptor.
func (c *Control) Clone() *Control {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// Clone returns a deep copy of the loop descriptor.
func (l *Loop) Clone() *Loop {
	if l == nil {
		return nil
	}
	out := *l
	return &out
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	out.Children = cloneStrings(e.Children)
	if e.Text != nil {
		text := *e.Text
		out.Text = &text
	}
	out.Styles = cloneStringMap(e.Styles)
	out.Classes = cloneStrings(e.Classes)
	out.Attrs = cloneStringMap(e.Attrs)
	out.Control = e.Control.Clone()
	out.Loop = e.Loop.Clone()
	return &out
}

// Clone returns a deep copy of the binding.
func (b *Binding) Clone() *Binding {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}

// Clone returns a deep copy of the action, including its value payload.
func (a Action) Clone() Action {
	out := a
	out.Value = CloneValue(a.Value)
	return out
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	out.Action = e.Action.Clone()
	return &out
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	out := *g
	out.Elif = cloneStrings(g.Elif)
	return &out
}

// Clone returns a deep copy of the flags.
func (f DirtyFlags) Clone() DirtyFlags {
	return DirtyFlags{
		Elements:     f.Elements.Clone(),
		Variables:    f.Variables.Clone(),
		Events:       f.Events.Clone(),
		Bindings:     f.Bindings.Clone(),
		Conditionals: f.Conditionals.Clone(),
		Loops:        f.Loops.Clone(),
		Structure:    f.Structure,
	}
}

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Meta: d.Meta,
		Variables: Variables{
			Static:   make(map[string]*Variable, len(d.Variables.Static)),
			Reactive: make(map[string]*Variable, len(d.Variables.Reactive)),
			Fetch:    make(map[string]*Variable, len(d.Variables.Fetch)),
		},
		Elements: Elements{
			RootID: d.Elements.RootID,
			Nodes:  make(map[string]*Element, len(d.Elements.Nodes)),
		},
		Events:            make(map[string][]*Event, len(d.Events)),
		Bindings:          make([]*Binding, 0, len(d.Bindings)),
		ConditionalGroups: make(map[string]*Group, len(d.ConditionalGroups)),
		Dirty:             d.Dirty.Clone(),
	}
	for name, v := range d.Variables.Static {
		out.Variables.Static[name] = v.Clone()
	}
	for name, v := range d.Variables.Reactive {
		out.Variables.Reactive[name] = v.Clone()
	}
	for name, v := range d.Variables.Fetch {
		out.Variables.Fetch[name] = v.Clone()
	}
	for id, e := range d.Elements.Nodes {
		out.Elements.Nodes[id] = e.Clone()
	}
	for eventType, events := range d.Events {
		cloned := make([]*Event, len(events))
		for i, e := range events {
			cloned[i] = e.Clone()
		}
		out.Events[eventType] = cloned
	}
	for _, b := range d.Bindings {
		out.Bindings = append(out.Bindings, b.Clone())
	}
	for id, g := range d.ConditionalGroups {
		out.ConditionalGroups[id] = g.Clone()
	}
	return out
}
