// Package project handles project snapshot files and their hot
// reloading.
package project

import (
	"fmt"
	"os"

	"github.com/zot/ui-builder/internal/ir"
)

// Load reads and decodes a project snapshot file.
func Load(path string) (*ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	doc, err := ir.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", path, err)
	}
	return doc, nil
}

// Save encodes a document and writes it to the project file.
func Save(path string, doc *ir.Document) error {
	data, err := ir.Encode(doc)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save project %s: %w", path, err)
	}
	return nil
}
