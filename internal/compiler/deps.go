package compiler

import "regexp"

// tokenRe picks identifier-shaped tokens out of condition expressions.
var tokenRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// analyzeDeps builds the variable -> subscribers table. Subscribers are
// binding elements, elements whose event actions target the variable,
// conditional groups whose expressions mention it, and loop elements
// sourced from it.
func (c *Compiler) analyzeDeps() {
	snap := c.snap
	for _, v := range snap.Variables() {
		c.deps[v.Name] = &DepInfo{Type: v.Type}
		c.depOrder = append(c.depOrder, v.Name)
	}
	for _, b := range snap.Bindings() {
		c.subscribe(b.Variable, b.ElementID)
	}
	for _, eventType := range snap.EventTypes() {
		for _, e := range snap.EventsOf(eventType) {
			target := e.Action.Target
			if target == "" {
				continue
			}
			if _, ok := snap.Variable(target); ok {
				c.subscribe(target, e.Target)
			}
		}
	}
	for _, groupID := range snap.GroupIDs() {
		group, _ := snap.Group(groupID)
		for _, member := range group.Members() {
			el := snap.Element(member)
			if el == nil || el.Control == nil || el.Control.Expr == "" {
				continue
			}
			for _, token := range tokenRe.FindAllString(el.Control.Expr, -1) {
				if _, ok := snap.Variable(token); ok {
					c.subscribe(token, groupID)
				}
			}
		}
	}
	for _, id := range snap.ElementIDs() {
		el := snap.Element(id)
		if el.Loop != nil {
			c.subscribe(el.Loop.Source, id)
		}
	}
}

// subscribe records sub as a dependent of the named variable, once.
func (c *Compiler) subscribe(variable, sub string) {
	dep, ok := c.deps[variable]
	if !ok {
		return
	}
	for _, existing := range dep.Subs {
		if existing == sub {
			return
		}
	}
	dep.Subs = append(dep.Subs, sub)
}

// hasSubs reports whether the variable has any dependents.
func (c *Compiler) hasSubs(name string) bool {
	dep, ok := c.deps[name]
	return ok && len(dep.Subs) > 0
}

// groupSubs returns the conditional groups subscribed to a variable, in
// subscription order.
func (c *Compiler) groupSubs(name string) []string {
	var out []string
	dep, ok := c.deps[name]
	if !ok {
		return nil
	}
	for _, sub := range dep.Subs {
		if c.nodes[sub] == NodeConditional {
			out = append(out, sub)
		}
	}
	return out
}

// loopSubs returns the loop elements subscribed to a variable, in
// subscription order.
func (c *Compiler) loopSubs(name string) []string {
	var out []string
	dep, ok := c.deps[name]
	if !ok {
		return nil
	}
	for _, sub := range dep.Subs {
		if c.nodes[sub] == NodeLoop {
			out = append(out, sub)
		}
	}
	return out
}

// varNames returns the variable names in emission order (sorted).
func (c *Compiler) varNames() []string {
	return append([]string(nil), c.depOrder...)
}
