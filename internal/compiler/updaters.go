package compiler

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// emitUpdaters writes one _u_<name>() per variable with subscribers.
// Each contains a guarded statement per binding, then the re-renders of
// subscribed conditional groups and loops. Every updater runs once at
// the tail of mount so the initial DOM reflects initial state.
func (c *Compiler) emitUpdaters() {
	for _, name := range c.varNames() {
		if !c.hasSubs(name) {
			continue
		}
		c.functions = append(c.functions, fmt.Sprintf("function _u_%s() {", name))
		for _, b := range c.snap.Bindings() {
			if b.Variable != name {
				continue
			}
			holder, ok := c.holders[b.ElementID]
			if !ok {
				// loop-body instances have no holders; they are rebuilt
				// wholesale when their loop refreshes
				continue
			}
			access := c.access(name)
			switch b.Kind {
			case ir.BindText:
				c.functions = append(c.functions, fmt.Sprintf("  if (%s) { %s.textContent = %s; }", holder, holder, access))
			case ir.BindAttr:
				c.functions = append(c.functions, fmt.Sprintf("  if (%s) { %s.setAttribute(%s, %s); }", holder, holder, jsString(b.Key), access))
			case ir.BindStyle:
				c.functions = append(c.functions, fmt.Sprintf("  if (%s) { %s.style.%s = %s; }", holder, holder, camelCase(b.Key), access))
			}
		}
		for _, groupID := range c.groupSubs(name) {
			if gname, ok := c.groupName[groupID]; ok {
				c.functions = append(c.functions, fmt.Sprintf("  _update_%s();", gname))
			}
		}
		for _, loopID := range c.loopSubs(name) {
			if n, ok := c.loopNum[loopID]; ok {
				c.functions = append(c.functions, fmt.Sprintf("  _update_loop%d();", n))
			}
		}
		c.functions = append(c.functions, "}")
		c.lifecycle = append(c.lifecycle, fmt.Sprintf("_u_%s();", name))
	}
}
