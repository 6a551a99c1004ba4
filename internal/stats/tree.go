package stats

import (
	"fmt"
	"io"

	"langchange/internal/model"
)

// RenderTree writes the partition hierarchy as an indented tree rooted at the
// original network.
func RenderTree(w io.Writer, h model.Hierarchy) error {
	children := h.ChildMap()
	steps := make(map[int]int, len(h.Events))
	for _, e := range h.Events {
		steps[e.Children[0]] = e.Step
		steps[e.Children[1]] = e.Step
	}

	if _, err := fmt.Fprintf(w, "network %d\n", h.Root); err != nil {
		return err
	}
	return renderChildren(w, children, steps, h.Root, "")
}

func renderChildren(w io.Writer, children map[int][2]int, steps map[int]int, id int, prefix string) error {
	pair, ok := children[id]
	if !ok {
		return nil
	}
	for i, child := range pair {
		branch, next := "├── ", "│   "
		if i == len(pair)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%snetwork %d (step %d)\n", prefix, branch, child, steps[child]); err != nil {
			return err
		}
		if err := renderChildren(w, children, steps, child, prefix+next); err != nil {
			return err
		}
	}
	return nil
}
