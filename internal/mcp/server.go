// Package mcp exposes the builder over the Model Context Protocol so
// agents can drive the store: mutation tools, undo/redo, validation,
// compilation, and the project snapshot as a resource. Every mutating
// tool runs inside one store transaction via the editor facade.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/zot/ui-builder/internal/editor"
	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/store"
)

// NewServer builds the MCP server around an editor.
func NewServer(ed *editor.Editor) *server.MCPServer {
	s := server.NewMCPServer("ui-builder", "0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	registerTools(s, ed)
	registerResources(s, ed)
	return s
}

// Serve runs the MCP server on stdio until the client disconnects.
func Serve(ed *editor.Editor) error {
	return server.ServeStdio(NewServer(ed))
}

func registerResources(s *server.MCPServer, ed *editor.Editor) {
	s.AddResource(mcp.NewResource("ui://project", "project",
		mcp.WithResourceDescription("Current project snapshot"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := ed.Export()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "ui://project",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func registerTools(s *server.MCPServer, ed *editor.Editor) {
	s.AddTool(mcp.NewTool("create_element",
		mcp.WithDescription("Create a UI element; the first parentless element becomes the root"),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Element kind, e.g. layout, text, button")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("HTML tag to emit")),
		mcp.WithString("parent", mcp.Description("Parent element id")),
		mcp.WithString("text", mcp.Description("Static text content")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tag, err := request.RequireString("tag")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		spec := store.ElementSpec{
			Kind:   kind,
			Tag:    tag,
			Parent: request.GetString("parent", ""),
		}
		if text := request.GetString("text", ""); text != "" {
			spec.Text = &text
		}
		var id string
		err = ed.Apply("element_added", map[string]any{"kind": kind}, func(st *store.Store) error {
			var createErr error
			id, createErr = st.Create(spec)
			return createErr
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(id), nil
	})

	s.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Delete an element and everything that references it"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		err = ed.Apply("element_deleted", map[string]any{"id": id}, func(st *store.Store) error {
			return st.Delete(id)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("deleted"), nil
	})

	s.AddTool(mcp.NewTool("set_text",
		mcp.WithDescription("Set an element's static text content"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text content")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		err = ed.Apply("text_changed", map[string]any{"id": id}, func(st *store.Store) error {
			return st.SetText(id, text)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("set_style",
		mcp.WithDescription("Set a CSS property on an element; empty value removes it"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("property", mcp.Required(), mcp.Description("CSS property (kebab-case)")),
		mcp.WithString("value", mcp.Description("CSS value")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		property, err := request.RequireString("property")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value := request.GetString("value", "")
		err = ed.Apply("style_changed", map[string]any{"id": id, "property": property}, func(st *store.Store) error {
			return st.Style(id, property, value)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("create_variable",
		mcp.WithDescription("Create a variable (static, reactive or fetch)"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Variable name, unique across all types")),
		mcp.WithString("type", mcp.Required(), mcp.Description("static, reactive or fetch")),
		mcp.WithString("init", mcp.Description("Initial value as JSON")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		varType, err := request.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var init any
		if raw := request.GetString("init", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &init); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("init is not valid JSON: %v", err)), nil
			}
		}
		err = ed.Apply("variable_added", map[string]any{"name": name}, func(st *store.Store) error {
			_, varErr := st.Var(store.VarSpec{Name: name, Type: ir.VarType(varType), Init: init})
			return varErr
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("update_variable",
		mcp.WithDescription("Update a non-static variable's value"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Variable name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value as JSON")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := request.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("value is not valid JSON: %v", err)), nil
		}
		err = ed.Apply("variable_changed", map[string]any{"name": name}, func(st *store.Store) error {
			return st.UpdateVar(name, value)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("bind_text",
		mcp.WithDescription("Bind an element's text content to a variable"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("variable", mcp.Required(), mcp.Description("Variable name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		variable, err := request.RequireString("variable")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		err = ed.Apply("binding_added", map[string]any{"id": id, "variable": variable}, func(st *store.Store) error {
			return st.BindText(id, variable)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Attach an event action to an element"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event type, e.g. click")),
		mcp.WithString("action", mcp.Required(), mcp.Description(`Action as JSON, e.g. {"kind":"Update","target":"count","op":"+=","value":1}`)),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		eventType, err := request.RequireString("event")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := request.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var action ir.Action
		if err := json.Unmarshal([]byte(raw), &action); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("action is not valid JSON: %v", err)), nil
		}
		var eventID string
		err = ed.Apply("event_added", map[string]any{"id": id, "event": eventType}, func(st *store.Store) error {
			var onErr error
			eventID, onErr = st.On(id, eventType, action)
			return onErr
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(eventID), nil
	})

	s.AddTool(mcp.NewTool("set_loop",
		mcp.WithDescription("Attach a loop descriptor to an element"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Array-valued variable name")),
		mcp.WithString("alias", mcp.Required(), mcp.Description("Item identifier inside the loop")),
		mcp.WithString("index", mcp.Description("Index identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		source, err := request.RequireString("source")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		alias, err := request.RequireString("alias")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		err = ed.Apply("loop_set", map[string]any{"id": id}, func(st *store.Store) error {
			return st.SetLoop(id, store.LoopSpec{
				Source: source,
				Alias:  alias,
				Index:  request.GetString("index", ""),
			})
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last committed transaction"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !ed.Undo() {
			return mcp.NewToolResultText("nothing to undo"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone transaction"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !ed.Redo() {
			return mcp.NewToolResultText("nothing to redo"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Validate conditional groups and loops"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]any{
			"conditionals": ed.Store().ValidateConditionalGroups(),
			"loops":        ed.Store().ValidateLoops(),
		}
		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.AddTool(mcp.NewTool("compile",
		mcp.WithDescription("Compile the current document to standalone JavaScript"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := ed.Compile()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(source), nil
	})
}
