package compiler

import (
	"strings"
	"testing"

	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/store"
)

// counterStore builds the reactive counter document: a div holding an
// h1 bound to count and a button whose click increments it.
func counterStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	err := s.Tx("setup", func() error {
		if _, err := s.Var(store.VarSpec{Name: "count", Type: ir.VarReactive, Init: 0}); err != nil {
			return err
		}
		root, err := s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		if err != nil {
			return err
		}
		h1, err := s.Create(store.ElementSpec{Kind: "text", Tag: "h1", Parent: root})
		if err != nil {
			return err
		}
		if err := s.BindText(h1, "count"); err != nil {
			return err
		}
		plus := "+"
		btn, err := s.Create(store.ElementSpec{Kind: "button", Tag: "button", Parent: root, Text: &plus})
		if err != nil {
			return err
		}
		_, err = s.On(btn, "click", ir.Action{Kind: ir.ActionUpdate, Target: "count", Op: "+=", Value: 1})
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return s
}

func mustContain(t *testing.T, source string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(source, want) {
			t.Errorf("output missing %q\n---\n%s", want, source)
		}
	}
}

// TestReactiveCounter is the end-to-end counter scenario.
func TestReactiveCounter(t *testing.T) {
	s := counterStore(t)
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		"let _count = 0;",
		"get value() { return _count; }",
		"set value(v) {",
		"if (_count !== v) {",
		"_count = v;",
		"_u_count();",
		"function _u_count() {",
		".textContent = count.value; }",
		"count.value += 1;",
		`document.createElement("h1")`,
		`document.createElement("button")`,
		`.textContent = "+";`,
		`addEventListener("click", _h0_click)`,
		`removeEventListener("click", _h0_click)`,
		"export function mount(target)",
		"destroy()",
	)
	// The initial update runs at the tail of mount.
	mountIdx := strings.Index(source, "export function mount")
	if !strings.Contains(source[mountIdx:], "_u_count();") {
		t.Error("mount does not invoke the initial update")
	}
	if !strings.Contains(source[mountIdx:], "_attach();") {
		t.Error("mount does not attach handlers")
	}
}

// TestIfElse is the conditional scenario built on top of the counter.
func TestIfElse(t *testing.T) {
	s := counterStore(t)
	var groupID string
	err := s.Tx("conditional", func() error {
		res, err := s.CreateIfGroup(s.Root(), store.CondSpec{
			Expr:    "count.value === 0",
			Element: store.ElementSpec{Kind: "text", Tag: "p", Text: strPtr("Zero!")},
		})
		if err != nil {
			return err
		}
		groupID = res.GroupID
		_, err = s.AddElse(groupID, store.ElementSpec{Kind: "text", Tag: "p", Text: strPtr("Not zero!")})
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	c := New()
	source, err := c.Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		"function _create_g1() {",
		"if (count.value === 0) {",
		"} else {",
		`.textContent = "Zero!";`,
		`.textContent = "Not zero!";`,
		"function _update_g1() {",
		"_a_g1 = document.createComment(\"\");",
		"insertBefore(_c_g1, _a_g1.nextSibling);",
	)
	// The setter's fan-out re-evaluates the group via _u_count.
	uIdx := strings.Index(source, "function _u_count() {")
	uEnd := strings.Index(source[uIdx:], "\n}")
	if !strings.Contains(source[uIdx:uIdx+uEnd], "_update_g1();") {
		t.Error("_u_count does not re-evaluate the conditional group")
	}

	// count's dependency set includes the group.
	deps := c.Debug().Deps["count"]
	found := false
	for _, sub := range deps.Subs {
		if sub == groupID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected group %s in count subs, got %v", groupID, deps.Subs)
	}
}

// TestLoop is the loop scenario: a looping li over items.
func TestLoop(t *testing.T) {
	s := store.New()
	err := s.Tx("setup", func() error {
		if _, err := s.Var(store.VarSpec{Name: "items", Type: ir.VarReactive, Init: []any{"x", "y"}}); err != nil {
			return err
		}
		li, err := s.Create(store.ElementSpec{Kind: "text", Tag: "li"})
		if err != nil {
			return err
		}
		return s.SetLoop(li, store.LoopSpec{Source: "items", Alias: "it"})
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		"function _loop1() {",
		"const frag = document.createDocumentFragment();",
		"(items.value || []).forEach((it) => {",
		`document.createElement("li")`,
		"v1 = _loop1();",
		"function _update_loop1() {",
	)
}

// TestLoopChildrenRichPath verifies loop bodies emit full styles,
// classes, attrs, the alias-qualified text binding, and child
// elements.
func TestLoopChildrenRichPath(t *testing.T) {
	// Alias-qualified text bindings only exist inside loop bodies, so
	// this document is built by hand.
	doc := ir.NewDocument()
	doc.Variables.Reactive["rows"] = &ir.Variable{ID: "variable_1_1", Name: "rows", Type: ir.VarReactive, Init: []any{}}
	doc.Elements.RootID = "element_1_1"
	doc.Elements.Nodes["element_1_1"] = &ir.Element{
		ID: "element_1_1", Kind: "layout", Tag: "ul", Children: []string{"element_2_1"},
	}
	doc.Elements.Nodes["element_2_1"] = &ir.Element{
		ID: "element_2_1", Kind: "text", Tag: "li", Parent: "element_1_1",
		Children: []string{"element_3_1"},
		Styles:   map[string]string{"font-size": "12px"},
		Classes:  []string{"row"},
		Attrs:    map[string]string{"role": "listitem"},
		Loop:     &ir.Loop{Source: "rows", Alias: "row", Index: "i"},
	}
	doc.Elements.Nodes["element_3_1"] = &ir.Element{
		ID: "element_3_1", Kind: "text", Tag: "span", Parent: "element_2_1",
		TextBinding: "row.name",
	}
	source, err := New().Compile(ir.NewSnapshot(doc))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		"forEach((row, i) => {",
		".style.fontSize = \"12px\";",
		`.classList.add("row");`,
		`.setAttribute("role", "listitem");`,
		`document.createElement("span")`,
		".textContent = row.name;",
	)
}

// TestStaticAndFetchVariables verifies the accessor spellings.
func TestStaticAndFetchVariables(t *testing.T) {
	s := store.New()
	err := s.Tx("setup", func() error {
		if _, err := s.Var(store.VarSpec{Name: "limit", Type: ir.VarStatic, Init: 10}); err != nil {
			return err
		}
		if _, err := s.Var(store.VarSpec{Name: "user", Type: ir.VarFetch, Source: "/api/user"}); err != nil {
			return err
		}
		root, err := s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		if err != nil {
			return err
		}
		p, err := s.Create(store.ElementSpec{Kind: "text", Tag: "p", Parent: root})
		if err != nil {
			return err
		}
		if err := s.BindText(p, "user"); err != nil {
			return err
		}
		q, err := s.Create(store.ElementSpec{Kind: "text", Tag: "p", Parent: root})
		if err != nil {
			return err
		}
		return s.BindText(q, "limit")
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		"let limit = 10;",
		"let _user = null;",
		"let _user_loading = true;",
		"let _user_error = null;",
		"get loading() { return _user_loading; }",
		".textContent = user.value; }",
		".textContent = limit; }",
	)
	if strings.Contains(source, "limit.value") {
		t.Error("static variable must not be accessed through .value")
	}
}

// TestAttrAndStyleBindings verifies binding emission for the other two
// kinds.
func TestAttrAndStyleBindings(t *testing.T) {
	s := store.New()
	err := s.Tx("setup", func() error {
		if _, err := s.Var(store.VarSpec{Name: "hue", Type: ir.VarReactive, Init: "red"}); err != nil {
			return err
		}
		root, err := s.Create(store.ElementSpec{Kind: "layout", Tag: "div"})
		if err != nil {
			return err
		}
		if _, err := s.Bind(root, "hue", ir.BindStyle, "background-color"); err != nil {
			return err
		}
		_, err = s.Bind(root, "hue", ir.BindAttr, "data-hue")
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source,
		".style.backgroundColor = hue.value; }",
		`.setAttribute("data-hue", hue.value); }`,
	)
}

// TestDeterminism verifies identical snapshots compile identically
// modulo the leading timestamp comment.
func TestDeterminism(t *testing.T) {
	s := counterStore(t)
	snap := s.GetIR()
	first, err := New().Compile(snap)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := New().Compile(snap)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	stripFirstLine := func(s string) string {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			return s[i+1:]
		}
		return s
	}
	if stripFirstLine(first) != stripFirstLine(second) {
		t.Error("compilation is not deterministic")
	}
}

// TestCompileRejectsInvalidIR verifies hand-constructed snapshots with
// dangling references fail.
func TestCompileRejectsInvalidIR(t *testing.T) {
	doc := ir.NewDocument()
	doc.Bindings = append(doc.Bindings, &ir.Binding{
		ID: "binding_1_1", ElementID: "element_9_9", Variable: "ghost", Kind: ir.BindText,
	})
	if _, err := New().Compile(ir.NewSnapshot(doc)); err == nil {
		t.Error("expected error for dangling binding")
	}

	doc = ir.NewDocument()
	doc.Elements.RootID = "element_9_9"
	if _, err := New().Compile(ir.NewSnapshot(doc)); err == nil {
		t.Error("expected error for missing root element")
	}
}

// TestEmptyDocument compiles to a mount that appends nothing.
func TestEmptyDocument(t *testing.T) {
	s := store.New()
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source, "return null;", "export function mount(target)")
}

// TestUnknownActionIsNoop verifies unrecognized action tags emit empty
// handlers.
func TestUnknownActionIsNoop(t *testing.T) {
	s := store.New()
	err := s.Tx("setup", func() error {
		root, err := s.Create(store.ElementSpec{Kind: "button", Tag: "button"})
		if err != nil {
			return err
		}
		_, err = s.On(root, "click", ir.Action{Kind: "Teleport", Target: "nowhere"})
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	source, err := New().Compile(s.GetIR())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mustContain(t, source, "function _h0_click() {\n}")
}

func strPtr(s string) *string {
	return &s
}
