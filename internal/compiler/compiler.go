// Package compiler turns a frozen IR snapshot into standalone JavaScript
// source. The output defines mount(target) -> { destroy() } and depends
// only on the ambient DOM API; there is no runtime library.
//
// The pipeline builds a node graph mirroring the IR, analyzes
// variable-to-dependent dependencies, emits code fragments into five
// ordered buckets (declarations, state, functions, lifecycle, cleanup)
// and assembles them around the mount closure.
package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/zot/ui-builder/internal/ir"
)

// NodeKind classifies a node-graph entry.
type NodeKind string

const (
	NodeVar         NodeKind = "variable"
	NodeElement     NodeKind = "element"
	NodeLoop        NodeKind = "loop"
	NodeConditional NodeKind = "conditional"
	NodeRoot        NodeKind = "root"
)

// DepInfo is one entry of the dependency table: a variable and the ids
// subscribed to it (binding elements, event sources, conditional groups,
// loop elements).
type DepInfo struct {
	Type ir.VarType `json:"type"`
	Subs []string   `json:"subs"`
}

// DebugInfo exposes the compiler's intermediate state after a compile.
type DebugInfo struct {
	Nodes    map[string]NodeKind    `json:"nodes"`
	Deps     map[string]DepInfo     `json:"deps"`
	Bindings []*ir.Binding          `json:"bindings"`
	Events   map[string][]*ir.Event `json:"events"`
}

// Compiler generates JS from one snapshot at a time. The zero value (what
// New returns) is ready to use; Compile resets all per-run state.
type Compiler struct {
	snap *ir.Snapshot

	nodes     map[string]NodeKind
	deps      map[string]*DepInfo
	depOrder  []string
	groupOf   map[string]string // member element id -> group id
	holders   map[string]string // element id -> holder name
	groupName map[string]string // group id -> short name (g3)
	loopNum   map[string]int    // loop element id -> loop number
	usedNames map[string]bool
	uid       int

	declarations []string
	state        []string
	functions    []string
	lifecycle    []string
	cleanup      []string
}

// New creates a compiler.
func New() *Compiler {
	return &Compiler{}
}

// Compile generates the JS source for a snapshot. The output is a pure
// function of the snapshot except for the leading timestamp comment.
func (c *Compiler) Compile(snap *ir.Snapshot) (string, error) {
	c.reset(snap)
	if err := c.validate(); err != nil {
		return "", err
	}
	c.buildGraph()
	c.analyzeDeps()
	c.emitState()
	if err := c.emitTree(); err != nil {
		return "", err
	}
	c.emitUpdaters()
	c.emitEvents()
	return c.assemble(), nil
}

func (c *Compiler) reset(snap *ir.Snapshot) {
	c.snap = snap
	c.nodes = make(map[string]NodeKind)
	c.deps = make(map[string]*DepInfo)
	c.depOrder = nil
	c.groupOf = make(map[string]string)
	c.holders = make(map[string]string)
	c.groupName = make(map[string]string)
	c.loopNum = make(map[string]int)
	c.usedNames = make(map[string]bool)
	c.uid = 0
	c.declarations = nil
	c.state = nil
	c.functions = nil
	c.lifecycle = nil
	c.cleanup = nil
}

// validate rejects snapshots the store would never have produced. These
// only arise from hand-constructed IR.
func (c *Compiler) validate() error {
	snap := c.snap
	if root := snap.RootID(); root != "" {
		rootEl := snap.Element(root)
		if rootEl == nil {
			return fmt.Errorf("compile: root element %s does not exist", root)
		}
		if rootEl.Control != nil {
			return fmt.Errorf("compile: root element %s cannot be conditional", root)
		}
	}
	for _, b := range snap.Bindings() {
		if snap.Element(b.ElementID) == nil {
			return fmt.Errorf("compile: binding %s references missing element %s", b.ID, b.ElementID)
		}
		if _, ok := snap.Variable(b.Variable); !ok {
			return fmt.Errorf("compile: binding %s references missing variable %s", b.ID, b.Variable)
		}
	}
	for _, groupID := range snap.GroupIDs() {
		group, _ := snap.Group(groupID)
		if group.If == "" || snap.Element(group.If) == nil {
			return fmt.Errorf("compile: group %s has no if element", groupID)
		}
		for _, member := range group.Members() {
			el := snap.Element(member)
			if el == nil {
				return fmt.Errorf("compile: group %s member %s does not exist", groupID, member)
			}
			if el.Control == nil {
				return fmt.Errorf("compile: group %s member %s has no control", groupID, member)
			}
			if el.Control.Type != ir.CondElse && el.Control.Expr == "" {
				return fmt.Errorf("compile: group %s member %s has an empty expression", groupID, member)
			}
		}
	}
	for _, id := range snap.ElementIDs() {
		el := snap.Element(id)
		if el.Loop != nil {
			if _, ok := snap.Variable(el.Loop.Source); !ok {
				return fmt.Errorf("compile: loop on %s references missing variable %s", id, el.Loop.Source)
			}
		}
	}
	return nil
}

// buildGraph classifies every entity into the node graph: one VarNode
// per variable, one ConditionalNode per group (owning its member
// elements), one LoopNode per loop element, an ElementNode for the
// rest, and the root entry.
func (c *Compiler) buildGraph() {
	snap := c.snap
	for _, v := range snap.Variables() {
		c.nodes[v.Name] = NodeVar
	}
	for _, groupID := range snap.GroupIDs() {
		group, _ := snap.Group(groupID)
		c.nodes[groupID] = NodeConditional
		for _, member := range group.Members() {
			c.groupOf[member] = groupID
		}
	}
	for _, id := range snap.ElementIDs() {
		if _, owned := c.groupOf[id]; owned {
			continue
		}
		el := snap.Element(id)
		if el.Loop != nil {
			c.nodes[id] = NodeLoop
		} else {
			c.nodes[id] = NodeElement
		}
	}
	if root := snap.RootID(); root != "" {
		c.nodes["root"] = NodeRoot
	}
}

// Debug returns the intermediate state of the last compile.
func (c *Compiler) Debug() DebugInfo {
	info := DebugInfo{
		Nodes:  make(map[string]NodeKind, len(c.nodes)),
		Deps:   make(map[string]DepInfo, len(c.deps)),
		Events: make(map[string][]*ir.Event),
	}
	for id, kind := range c.nodes {
		info.Nodes[id] = kind
	}
	for name, dep := range c.deps {
		info.Deps[name] = DepInfo{Type: dep.Type, Subs: append([]string(nil), dep.Subs...)}
	}
	if c.snap != nil {
		info.Bindings = c.snap.Bindings()
		for _, eventType := range c.snap.EventTypes() {
			info.Events[eventType] = c.snap.EventsOf(eventType)
		}
	}
	return info
}

// assemble stitches the buckets together around mount.
func (c *Compiler) assemble() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Generated by ui-builder at %s\n", time.Now().Format(time.RFC3339))
	for _, line := range c.declarations {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(c.declarations) > 0 {
		sb.WriteString("\n")
	}
	for _, line := range c.state {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(c.state) > 0 {
		sb.WriteString("\n")
	}
	for _, line := range c.functions {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(c.functions) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("export function mount(target) {\n")
	sb.WriteString("  const _root = _create();\n")
	sb.WriteString("  if (_root) {\n")
	sb.WriteString("    target.appendChild(_root);\n")
	sb.WriteString("  }\n")
	for _, line := range c.lifecycle {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("  return {\n")
	sb.WriteString("    destroy() {\n")
	for _, line := range c.cleanup {
		sb.WriteString("      " + line + "\n")
	}
	sb.WriteString("      if (_root && _root.parentNode) {\n")
	sb.WriteString("        _root.parentNode.removeChild(_root);\n")
	sb.WriteString("      }\n")
	sb.WriteString("    }\n")
	sb.WriteString("  };\n")
	sb.WriteString("}\n")
	return sb.String()
}
