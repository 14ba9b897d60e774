// Package delta models batched file-change notifications as immutable trees
// and extracts the set of resources whose content actually changed.
package delta

import (
	"errors"
	"fmt"
)

// Kind describes what happened to a resource.
type Kind int

const (
	// Added means the resource appeared.
	Added Kind = iota
	// Removed means the resource disappeared.
	Removed
	// Changed means the resource was modified in place.
	Changed
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "changed"
	}
}

// Flags is a bit set qualifying a Changed node.
type Flags uint8

const (
	// Content indicates the resource's bytes were modified.
	Content Flags = 1 << iota
	// Metadata indicates only attributes changed (permissions, times).
	Metadata
)

// Node is one entry in a change-notification tree. Trees are built once and
// never mutated after being handed to consumers.
type Node struct {
	Path     string
	Kind     Kind
	Flags    Flags
	Dir      bool
	Children []*Node
}

// ErrMalformed is returned when a notification tree cannot be traversed.
var ErrMalformed = errors.New("malformed delta tree")

// ContentChanged walks the whole tree and returns the paths of files that
// were modified in place with a content change. Added and removed resources,
// metadata-only changes, and directories are all excluded. The walk visits
// every reachable node; a nil node or a file node carrying children makes
// the tree malformed.
func ContentChanged(root *Node) ([]string, error) {
	changed := []string{}
	if err := walk(root, &changed); err != nil {
		return nil, err
	}
	return changed, nil
}

func walk(n *Node, out *[]string) error {
	if n == nil {
		return ErrMalformed
	}
	if !n.Dir && len(n.Children) > 0 {
		return fmt.Errorf("%w: file node %q has children", ErrMalformed, n.Path)
	}
	if n.Kind == Changed && n.Flags&Content != 0 && !n.Dir {
		*out = append(*out, n.Path)
	}
	for _, c := range n.Children {
		if err := walk(c, out); err != nil {
			return err
		}
	}
	return nil
}
