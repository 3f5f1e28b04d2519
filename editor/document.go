package editor

import (
	"bytes"
	"sync"
)

// Document is an ordered list of blocks, safe for concurrent use. Uploads
// finish on their own goroutines and edit the document while the writer
// keeps working on it.
type Document struct {
	lock  sync.RWMutex
	nodes []Node
}

func NewDocument(nodes ...Node) *Document {
	return &Document{nodes: cloneNodes(nodes)}
}

// Insert places n before position pos, clamped to the document bounds, and
// returns the index n ended up at.
func (d *Document) Insert(pos int, n Node) int {
	d.lock.Lock()
	defer d.lock.Unlock()

	if pos < 0 {
		pos = 0
	}
	if pos > len(d.nodes) {
		pos = len(d.nodes)
	}
	d.nodes = append(d.nodes, nil)
	copy(d.nodes[pos+1:], d.nodes[pos:])
	d.nodes[pos] = cloneNode(n)
	return pos
}

func (d *Document) Append(n Node) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.nodes = append(d.nodes, cloneNode(n))
	return len(d.nodes) - 1
}

// Nodes returns a copy of the blocks.
func (d *Document) Nodes() []Node {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return cloneNodes(d.nodes)
}

func (d *Document) Len() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.nodes)
}

// ReplaceImage swaps the placeholder image carrying marker for img. It
// reports false when no such placeholder is left, e.g. because the writer
// deleted it.
func (d *Document) ReplaceImage(marker string, img Image) bool {
	return d.editImage(marker, func(nodes []Node, i int) []Node {
		nodes[i] = img
		return nodes
	})
}

// RemoveImage deletes the placeholder image carrying marker.
func (d *Document) RemoveImage(marker string) bool {
	return d.editImage(marker, func(nodes []Node, i int) []Node {
		return append(nodes[:i], nodes[i+1:]...)
	})
}

// ExitCodeBlock handles Enter at the end of the code block at pos: when the
// code ends with a blank line, the blank line is dropped and an empty
// paragraph follows the block.
func (d *Document) ExitCodeBlock(pos int) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if pos < 0 || pos >= len(d.nodes) {
		return false
	}
	cb, ok := d.nodes[pos].(CodeBlock)
	if !ok {
		return false
	}
	trimmed, exit := cb.ExitOnEnter()
	if !exit {
		return false
	}
	d.nodes[pos] = trimmed
	d.nodes = append(d.nodes, nil)
	copy(d.nodes[pos+2:], d.nodes[pos+1:])
	d.nodes[pos+1] = Paragraph{}
	return true
}

// HTML renders the document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, d.Nodes()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// editImage scans the document in order for the first placeholder with the
// marker, descending into quotes and lists, and applies edit to the slice
// holding it.
func (d *Document) editImage(marker string, edit func(nodes []Node, i int) []Node) bool {
	if marker == "" {
		return false
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	var walk func(nodes []Node) ([]Node, bool)
	walk = func(nodes []Node) ([]Node, bool) {
		for i, n := range nodes {
			switch v := n.(type) {
			case Image:
				if v.Loading == marker {
					return edit(nodes, i), true
				}
			case Blockquote:
				if children, ok := walk(v.Children); ok {
					v.Children = children
					nodes[i] = v
					return nodes, true
				}
			case List:
				for j, it := range v.Items {
					if children, ok := walk(it.Children); ok {
						v.Items[j].Children = children
						nodes[i] = v
						return nodes, true
					}
				}
			}
		}
		return nodes, false
	}

	nodes, ok := walk(d.nodes)
	d.nodes = nodes
	return ok
}
