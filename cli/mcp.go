package cli

import (
	"github.com/zot/ui-builder/internal/editor"
	"github.com/zot/ui-builder/internal/mcp"
)

// serveMCP is split out so wrapper projects can stub it in tests.
func serveMCP(ed *editor.Editor) error {
	return mcp.Serve(ed)
}
