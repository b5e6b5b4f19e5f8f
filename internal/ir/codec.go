package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The persisted snapshot format is the document tree encoded as JSON:
// mappings become objects, sequences become arrays, sets become
// duplicate-free arrays. Meta.Version gates decoding.

// Encode serializes a document to its persisted snapshot form.
func Encode(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a persisted snapshot and rebuilds the document. Missing
// variable, element, event and group maps and dirty-flag sets come back
// empty; a missing bindings list or children list stays nil.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Meta.Version == "" {
		return nil, fmt.Errorf("decode snapshot: missing version")
	}
	if major(doc.Meta.Version) != major(Version) {
		return nil, fmt.Errorf("decode snapshot: unsupported version %s", doc.Meta.Version)
	}
	normalize(&doc)
	return &doc, nil
}

func major(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}

// normalize fills in nil collections after decoding.
func normalize(doc *Document) {
	if doc.Variables.Static == nil {
		doc.Variables.Static = make(map[string]*Variable)
	}
	if doc.Variables.Reactive == nil {
		doc.Variables.Reactive = make(map[string]*Variable)
	}
	if doc.Variables.Fetch == nil {
		doc.Variables.Fetch = make(map[string]*Variable)
	}
	if doc.Elements.Nodes == nil {
		doc.Elements.Nodes = make(map[string]*Element)
	}
	if doc.Events == nil {
		doc.Events = make(map[string][]*Event)
	}
	if doc.ConditionalGroups == nil {
		doc.ConditionalGroups = make(map[string]*Group)
	}
	if doc.Dirty.Elements == nil {
		doc.Dirty = NewDirtyFlags()
	}
}
