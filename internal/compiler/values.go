package compiler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zot/ui-builder/internal/ir"
)

// jsValue serializes a value as a JS literal: strings JSON-quoted,
// numbers and booleans textual, arrays and records recursively, nil as
// null. Record keys are sorted so output is deterministic.
func jsValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", jsString(k), jsValue(val[k]))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = jsValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		return string(data)
	}
}

// jsString JSON-quotes a string.
func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// actionValue serializes an event-action value. Strings are expressions
// and embed verbatim; everything else is a literal.
func actionValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return jsValue(v)
}

// camelCase converts a kebab-case CSS property to its JS spelling.
func camelCase(property string) string {
	parts := strings.Split(property, "-")
	var sb strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			sb.WriteString(part)
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// access spells a read of the variable's current value: reactive and
// fetch variables go through their accessor record, static ones are
// plain names. Unknown names pass through untouched.
func (c *Compiler) access(name string) string {
	v, ok := c.snap.Variable(name)
	if !ok {
		return name
	}
	if v.Type == ir.VarStatic {
		return name
	}
	return name + ".value"
}

// sortedKeys returns a string map's keys in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// identSafe flattens a string into an identifier fragment.
func identSafe(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// idNum extracts the numeric counter segment from a minted id
// ("element_3_171..." -> "3"). Returns "" for foreign ids.
func idNum(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return ""
	}
	num := parts[1]
	for _, r := range num {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return num
}

// holderFor assigns (or returns) the stable holder name for an element:
// e<n> from the id's counter segment, with a private uid fallback for
// foreign or colliding ids.
func (c *Compiler) holderFor(id string) string {
	if name, ok := c.holders[id]; ok {
		return name
	}
	name := ""
	if num := idNum(id); num != "" {
		name = "e" + num
	}
	if name == "" || c.usedNames[name] {
		name = c.nextUID("e")
	}
	c.usedNames[name] = true
	c.holders[id] = name
	return name
}

// groupNameFor assigns (or returns) the short name for a group (g<n>).
func (c *Compiler) groupNameFor(groupID string) string {
	if name, ok := c.groupName[groupID]; ok {
		return name
	}
	name := ""
	if num := idNum(groupID); num != "" {
		name = "g" + num
	}
	if name == "" || c.usedNames[name] {
		name = c.nextUID("g")
	}
	c.usedNames[name] = true
	c.groupName[groupID] = name
	return name
}

// nextUID mints a collision-free fallback name.
func (c *Compiler) nextUID(prefix string) string {
	for {
		c.uid++
		name := fmt.Sprintf("%s_u%d", prefix, c.uid)
		if !c.usedNames[name] {
			return name
		}
	}
}
