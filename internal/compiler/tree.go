package compiler

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// emitTree writes _create() plus the loop and conditional functions
// discovered while walking the element tree from the root.
func (c *Compiler) emitTree() error {
	var body []string
	var loops, groups []string

	root := c.snap.RootID()
	switch {
	case root == "":
		body = append(body, "  return null;")
	case c.nodes[root] == NodeLoop:
		// a looping root has no single holder; mount a fragment instead
		body = append(body, "  const frag = document.createDocumentFragment();")
		c.emitLoopSlot(&body, root, "frag", "  ")
		loops = append(loops, root)
		body = append(body, "  return frag;")
	default:
		c.emitElementInto(&body, root, "", "  ", &loops, &groups)
		body = append(body, fmt.Sprintf("  return %s;", c.holders[root]))
	}
	c.functions = append(c.functions, "function _create() {")
	c.functions = append(c.functions, body...)
	c.functions = append(c.functions, "}")

	// Worklist: group branches may contain further loops and groups.
	for len(loops) > 0 || len(groups) > 0 {
		pendingLoops, pendingGroups := loops, groups
		loops, groups = nil, nil
		for _, loopID := range pendingLoops {
			c.emitLoopFuncs(loopID)
		}
		for _, groupID := range pendingGroups {
			c.emitGroupFuncs(groupID, &loops, &groups)
		}
	}
	return nil
}

// emitElementInto emits one element (and its subtree) into lines,
// appending it to parentHolder afterwards. Conditional-group members
// and loop elements divert to their owning nodes.
func (c *Compiler) emitElementInto(lines *[]string, id, parentHolder, indent string, loops, groups *[]string) {
	if groupID, owned := c.groupOf[id]; owned {
		group, _ := c.snap.Group(groupID)
		if group.If == id {
			c.emitGroupSlot(lines, groupID, parentHolder, indent)
			*groups = append(*groups, groupID)
		}
		// elif/else members are owned by the group's create function
		return
	}
	el := c.snap.Element(id)
	if el == nil {
		return
	}
	if el.Loop != nil {
		c.emitLoopSlot(lines, id, parentHolder, indent)
		*loops = append(*loops, id)
		return
	}
	holder := c.holderFor(id)
	c.declarations = append(c.declarations, fmt.Sprintf("let %s = null;", holder))
	c.emitElementBody(lines, el, holder, indent, loops, groups)
	if parentHolder != "" {
		*lines = append(*lines, fmt.Sprintf("%s%s.appendChild(%s);", indent, parentHolder, holder))
	}
}

// emitElementBody writes createElement plus text, styles, classes,
// attrs, then the children in declaration order.
func (c *Compiler) emitElementBody(lines *[]string, el *ir.Element, holder, indent string, loops, groups *[]string) {
	*lines = append(*lines, fmt.Sprintf("%s%s = document.createElement(%s);", indent, holder, jsString(el.Tag)))
	if el.Text != nil {
		*lines = append(*lines, fmt.Sprintf("%s%s.textContent = %s;", indent, holder, jsString(*el.Text)))
	}
	for _, property := range sortedKeys(el.Styles) {
		*lines = append(*lines, fmt.Sprintf("%s%s.style.%s = %s;", indent, holder, camelCase(property), jsString(el.Styles[property])))
	}
	for _, class := range el.Classes {
		*lines = append(*lines, fmt.Sprintf("%s%s.classList.add(%s);", indent, holder, jsString(class)))
	}
	for _, name := range sortedKeys(el.Attrs) {
		*lines = append(*lines, fmt.Sprintf("%s%s.setAttribute(%s, %s);", indent, holder, jsString(name), jsString(el.Attrs[name])))
	}
	for _, childID := range el.Children {
		c.emitElementInto(lines, childID, holder, indent, loops, groups)
	}
}

// emitGroupSlot emits the anchor comment and initial branch mount at
// the group's position in the tree.
func (c *Compiler) emitGroupSlot(lines *[]string, groupID, parentHolder, indent string) {
	name := c.groupNameFor(groupID)
	c.declarations = append(c.declarations, fmt.Sprintf("let _a_%s = null;", name))
	c.declarations = append(c.declarations, fmt.Sprintf("let _c_%s = null;", name))
	*lines = append(*lines, fmt.Sprintf("%s_a_%s = document.createComment(\"\");", indent, name))
	*lines = append(*lines, fmt.Sprintf("%s%s.appendChild(_a_%s);", indent, parentHolder, name))
	*lines = append(*lines, fmt.Sprintf("%s_c_%s = _create_%s();", indent, name, name))
	*lines = append(*lines, fmt.Sprintf("%sif (_c_%s) {", indent, name))
	*lines = append(*lines, fmt.Sprintf("%s  %s.appendChild(_c_%s);", indent, parentHolder, name))
	*lines = append(*lines, fmt.Sprintf("%s}", indent))
}

// emitLoopSlot emits the anchor comment plus the initial fragment
// mount for a loop element.
func (c *Compiler) emitLoopSlot(lines *[]string, id, parentHolder, indent string) {
	n := len(c.loopNum) + 1
	c.loopNum[id] = n
	c.declarations = append(c.declarations, fmt.Sprintf("let v%d = null;", n))
	c.declarations = append(c.declarations, fmt.Sprintf("let _al%d = null;", n))
	c.declarations = append(c.declarations, fmt.Sprintf("let _ln%d = [];", n))
	*lines = append(*lines, fmt.Sprintf("%s_al%d = document.createComment(\"\");", indent, n))
	*lines = append(*lines, fmt.Sprintf("%s%s.appendChild(_al%d);", indent, parentHolder, n))
	*lines = append(*lines, fmt.Sprintf("%sv%d = _loop%d();", indent, n, n))
	*lines = append(*lines, fmt.Sprintf("%s%s.appendChild(v%d);", indent, parentHolder, n))
	c.cleanup = append(c.cleanup, fmt.Sprintf("_ln%d.forEach((node) => { if (node.parentNode) { node.parentNode.removeChild(node); } });", n))
	c.cleanup = append(c.cleanup, fmt.Sprintf("if (_al%d && _al%d.parentNode) { _al%d.parentNode.removeChild(_al%d); }", n, n, n, n))
}

// emitGroupFuncs writes _create_<g>() holding the if/else-if/else chain
// and _update_<g>() which swaps the mounted branch next to the anchor.
func (c *Compiler) emitGroupFuncs(groupID string, loops, groups *[]string) {
	group, _ := c.snap.Group(groupID)
	name := c.groupNameFor(groupID)

	var body []string
	first := true
	branch := func(el *ir.Element) {
		keyword := "} else if"
		if first {
			keyword = "if"
			first = false
		}
		if el.Control != nil && el.Control.Type != ir.CondElse {
			body = append(body, fmt.Sprintf("  %s (%s) {", keyword, el.Control.Expr))
		} else {
			body = append(body, "  } else {")
		}
		holder := c.holderFor(el.ID)
		c.declarations = append(c.declarations, fmt.Sprintf("let %s = null;", holder))
		c.emitElementBody(&body, el, holder, "    ", loops, groups)
		body = append(body, fmt.Sprintf("    return %s;", holder))
	}

	for _, memberID := range group.Members() {
		if el := c.snap.Element(memberID); el != nil {
			branch(el)
		}
	}
	if !first {
		body = append(body, "  }")
	}
	body = append(body, "  return null;")

	c.functions = append(c.functions, fmt.Sprintf("function _create_%s() {", name))
	c.functions = append(c.functions, body...)
	c.functions = append(c.functions, "}")

	c.functions = append(c.functions, fmt.Sprintf("function _update_%s() {", name))
	c.functions = append(c.functions, fmt.Sprintf("  if (_c_%s && _c_%s.parentNode) {", name, name))
	c.functions = append(c.functions, fmt.Sprintf("    _c_%s.parentNode.removeChild(_c_%s);", name, name))
	c.functions = append(c.functions, "  }")
	c.functions = append(c.functions, fmt.Sprintf("  _c_%s = _create_%s();", name, name))
	c.functions = append(c.functions, fmt.Sprintf("  if (_c_%s && _a_%s && _a_%s.parentNode) {", name, name, name))
	c.functions = append(c.functions, fmt.Sprintf("    _a_%s.parentNode.insertBefore(_c_%s, _a_%s.nextSibling);", name, name, name))
	c.functions = append(c.functions, "  }")
	c.functions = append(c.functions, "}")
}

// emitLoopFuncs writes _loop<n>() building a DocumentFragment with one
// subtree per source item, and _update_loop<n>() which tears down the
// previous instances and re-runs the body.
func (c *Compiler) emitLoopFuncs(loopID string) {
	el := c.snap.Element(loopID)
	n := c.loopNum[loopID]
	loop := el.Loop

	params := loop.Alias
	if loop.Index != "" {
		params += ", " + loop.Index
	}

	c.functions = append(c.functions, fmt.Sprintf("function _loop%d() {", n))
	c.functions = append(c.functions, "  const frag = document.createDocumentFragment();")
	c.functions = append(c.functions, fmt.Sprintf("  (%s || []).forEach((%s) => {", c.access(loop.Source), params))
	counter := 0
	var body []string
	local := c.emitLoopElement(&body, el, "    ", &counter)
	c.functions = append(c.functions, body...)
	c.functions = append(c.functions, fmt.Sprintf("    frag.appendChild(%s);", local))
	c.functions = append(c.functions, fmt.Sprintf("    _ln%d.push(%s);", n, local))
	c.functions = append(c.functions, "  });")
	c.functions = append(c.functions, "  return frag;")
	c.functions = append(c.functions, "}")

	c.functions = append(c.functions, fmt.Sprintf("function _update_loop%d() {", n))
	c.functions = append(c.functions, fmt.Sprintf("  _ln%d.forEach((node) => {", n))
	c.functions = append(c.functions, "    if (node.parentNode) {")
	c.functions = append(c.functions, "      node.parentNode.removeChild(node);")
	c.functions = append(c.functions, "    }")
	c.functions = append(c.functions, "  });")
	c.functions = append(c.functions, fmt.Sprintf("  _ln%d = [];", n))
	c.functions = append(c.functions, fmt.Sprintf("  if (_al%d && _al%d.parentNode) {", n, n))
	c.functions = append(c.functions, fmt.Sprintf("    _al%d.parentNode.insertBefore(_loop%d(), _al%d.nextSibling);", n, n, n))
	c.functions = append(c.functions, "  }")
	c.functions = append(c.functions, "}")
}

// emitLoopElement builds one element instance inside a loop body using
// local names instead of module-scoped holders; there is one instance
// per iteration. Text bindings embed the alias-qualified identifier
// verbatim. Nested loop and conditional descriptors are inert inside a
// loop body; the subtree is emitted as plain elements.
func (c *Compiler) emitLoopElement(lines *[]string, el *ir.Element, indent string, counter *int) string {
	local := fmt.Sprintf("n%d", *counter)
	*counter++
	*lines = append(*lines, fmt.Sprintf("%sconst %s = document.createElement(%s);", indent, local, jsString(el.Tag)))
	if el.TextBinding != "" {
		*lines = append(*lines, fmt.Sprintf("%s%s.textContent = %s;", indent, local, el.TextBinding))
	} else if el.Text != nil {
		*lines = append(*lines, fmt.Sprintf("%s%s.textContent = %s;", indent, local, jsString(*el.Text)))
	}
	for _, property := range sortedKeys(el.Styles) {
		*lines = append(*lines, fmt.Sprintf("%s%s.style.%s = %s;", indent, local, camelCase(property), jsString(el.Styles[property])))
	}
	for _, class := range el.Classes {
		*lines = append(*lines, fmt.Sprintf("%s%s.classList.add(%s);", indent, local, jsString(class)))
	}
	for _, name := range sortedKeys(el.Attrs) {
		*lines = append(*lines, fmt.Sprintf("%s%s.setAttribute(%s, %s);", indent, local, jsString(name), jsString(el.Attrs[name])))
	}
	for _, eventType := range c.snap.EventTypes() {
		for i, e := range c.snap.EventsOf(eventType) {
			if e.Target == el.ID {
				*lines = append(*lines, fmt.Sprintf("%s%s.addEventListener(%s, %s);", indent, local, jsString(eventType), handlerName(i, eventType)))
			}
		}
	}
	for _, childID := range el.Children {
		child := c.snap.Element(childID)
		if child == nil {
			continue
		}
		childLocal := c.emitLoopElement(lines, child, indent, counter)
		*lines = append(*lines, fmt.Sprintf("%s%s.appendChild(%s);", indent, local, childLocal))
	}
	return local
}

// handlerName derives the stable name of the i-th handler of an event
// type.
func handlerName(i int, eventType string) string {
	return fmt.Sprintf("_h%d_%s", i, identSafe(eventType))
}
