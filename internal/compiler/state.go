package compiler

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// emitState writes the variable declarations. Static variables are
// plain mutable names; reactive variables hide a backing field behind
// an accessor whose setter fans out to _u_<name>() when the variable
// has subscribers; fetch variables add loading/error fields exposed
// read-only.
func (c *Compiler) emitState() {
	for _, name := range c.varNames() {
		v, _ := c.snap.Variable(name)
		switch v.Type {
		case ir.VarStatic:
			c.state = append(c.state, fmt.Sprintf("let %s = %s;", name, jsValue(v.Init)))
		case ir.VarReactive:
			c.emitReactive(v)
		case ir.VarFetch:
			c.emitFetch(v)
		}
	}
}

func (c *Compiler) emitReactive(v *ir.Variable) {
	backing := "_" + v.Name
	c.state = append(c.state, fmt.Sprintf("let %s = %s;", backing, jsValue(v.Init)))
	c.state = append(c.state, fmt.Sprintf("const %s = {", v.Name))
	c.state = append(c.state, fmt.Sprintf("  get value() { return %s; },", backing))
	c.state = append(c.state, "  set value(v) {")
	c.state = append(c.state, fmt.Sprintf("    if (%s !== v) {", backing))
	c.state = append(c.state, fmt.Sprintf("      %s = v;", backing))
	if c.hasSubs(v.Name) {
		c.state = append(c.state, fmt.Sprintf("      _u_%s();", v.Name))
	}
	c.state = append(c.state, "    }")
	c.state = append(c.state, "  }")
	c.state = append(c.state, "};")
}

func (c *Compiler) emitFetch(v *ir.Variable) {
	backing := "_" + v.Name
	c.state = append(c.state, fmt.Sprintf("let %s = %s;", backing, jsValue(v.Init)))
	c.state = append(c.state, fmt.Sprintf("let %s_loading = true;", backing))
	c.state = append(c.state, fmt.Sprintf("let %s_error = null;", backing))
	c.state = append(c.state, fmt.Sprintf("const %s = {", v.Name))
	c.state = append(c.state, fmt.Sprintf("  get value() { return %s; },", backing))
	c.state = append(c.state, fmt.Sprintf("  get loading() { return %s_loading; },", backing))
	c.state = append(c.state, fmt.Sprintf("  get error() { return %s_error; }", backing))
	c.state = append(c.state, "};")
}
