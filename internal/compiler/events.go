package compiler

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// emitEvents writes one named handler per event, a single _attach()
// binding them with addEventListener, and the matching
// removeEventListener calls in the cleanup bucket. Handlers for
// loop-body targets are attached inline by the loop emitter instead.
func (c *Compiler) emitEvents() {
	var attach []string
	emitted := false
	for _, eventType := range c.snap.EventTypes() {
		for i, e := range c.snap.EventsOf(eventType) {
			emitted = true
			name := handlerName(i, eventType)
			c.functions = append(c.functions, fmt.Sprintf("function %s() {", name))
			if stmt := actionStatement(c, e.Action); stmt != "" {
				c.functions = append(c.functions, "  "+stmt)
			}
			c.functions = append(c.functions, "}")
			if holder, ok := c.holders[e.Target]; ok {
				attach = append(attach, fmt.Sprintf("  if (%s) { %s.addEventListener(%s, %s); }", holder, holder, jsString(eventType), name))
				c.cleanup = append(c.cleanup, fmt.Sprintf("if (%s) { %s.removeEventListener(%s, %s); }", holder, holder, jsString(eventType), name))
			}
		}
	}
	if !emitted {
		return
	}
	c.functions = append(c.functions, "function _attach() {")
	c.functions = append(c.functions, attach...)
	c.functions = append(c.functions, "}")
	c.lifecycle = append(c.lifecycle, "_attach();")
}

// actionStatement translates an action into one JS statement. Unknown
// tags become no-ops.
func actionStatement(c *Compiler, action ir.Action) string {
	switch action.Kind {
	case ir.ActionUpdate:
		target := c.access(action.Target)
		value := actionValue(action.Value)
		if action.Op == "" || action.Op == "=" {
			return fmt.Sprintf("%s = %s;", target, value)
		}
		return fmt.Sprintf("%s %s %s;", target, action.Op, value)
	case ir.ActionSet:
		return fmt.Sprintf("%s = %s;", c.access(action.Target), actionValue(action.Value))
	case ir.ActionCall:
		if action.Function == "" {
			return ""
		}
		return fmt.Sprintf("%s();", action.Function)
	default:
		return ""
	}
}
