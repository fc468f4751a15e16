package mergetree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/topomesh/mergetree/pkg/compression"
	"github.com/topomesh/mergetree/pkg/writer"
)

// exportDoc is the JSON shape written by WriteJSON.
type exportDoc struct {
	Type  string `json:"type"`
	Nodes []Node `json:"nodes"`
	Arcs  []Arc  `json:"arcs"`
	Roots []int  `json:"roots"`
}

func (t *Tree) exportDoc() exportDoc {
	return exportDoc{
		Type:  t.Type.String(),
		Nodes: t.Nodes(),
		Arcs:  t.Arcs(),
		Roots: t.Roots(),
	}
}

// WriteJSON serializes the tree's nodes, arcs, and roots as JSON.
func (t *Tree) WriteJSON(w io.Writer, pretty bool) error {
	doc := t.exportDoc()
	if pretty {
		return writer.NewPrettyJSONWriter[exportDoc]().Write(doc, w)
	}
	return writer.NewJSONWriter[exportDoc]().Write(doc, w)
}

// WriteCompressed serializes the tree as JSON and compresses it with the
// given algorithm before writing to w. Large segmented trees (every vertex
// appears in some arc's Region) compress well since regions are runs of
// sorted, nearby vertex ids.
func (t *Tree) WriteCompressed(w io.Writer, typ compression.Type, level compression.Level) error {
	raw, err := json.Marshal(t.exportDoc())
	if err != nil {
		return fmt.Errorf("mergetree: marshal export doc: %w", err)
	}

	comp, err := compression.New(typ, level)
	if err != nil {
		return fmt.Errorf("mergetree: build compressor: %w", err)
	}
	defer compression.Close(comp)

	out, err := comp.Compress(raw)
	if err != nil {
		return fmt.Errorf("mergetree: compress export doc: %w", err)
	}
	_, err = io.Copy(w, bytes.NewReader(out))
	return err
}
