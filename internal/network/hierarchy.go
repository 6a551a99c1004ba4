package network

import (
	"fmt"

	"langchange/internal/model"
)

// Hierarchy records every partition event. It is append-only: a network is
// split at most once and a child id is never reused.
type Hierarchy struct {
	root     int
	children map[int][2]int
	known    map[int]struct{}
	events   []model.PartitionEvent
}

func NewHierarchy(root int) *Hierarchy {
	return &Hierarchy{
		root:     root,
		children: make(map[int][2]int),
		known:    map[int]struct{}{root: {}},
	}
}

func (h *Hierarchy) Root() int {
	return h.root
}

func (h *Hierarchy) Record(parent int, children [2]int, step int) error {
	if _, ok := h.known[parent]; !ok {
		return fmt.Errorf("partition hierarchy: unknown parent %d", parent)
	}
	if _, split := h.children[parent]; split {
		return fmt.Errorf("partition hierarchy: network %d already partitioned", parent)
	}
	if children[0] == children[1] {
		return fmt.Errorf("partition hierarchy: children of %d share id %d", parent, children[0])
	}
	for _, c := range children {
		if _, ok := h.known[c]; ok {
			return fmt.Errorf("partition hierarchy: child id %d already in use", c)
		}
	}
	h.children[parent] = children
	h.known[children[0]] = struct{}{}
	h.known[children[1]] = struct{}{}
	h.events = append(h.events, model.PartitionEvent{Parent: parent, Children: children, Step: step})
	return nil
}

func (h *Hierarchy) Children(id int) ([2]int, bool) {
	c, ok := h.children[id]
	return c, ok
}

// Len is the number of partition events.
func (h *Hierarchy) Len() int {
	return len(h.events)
}

// Leaves returns the unsplit networks reachable from the root, depth first in
// child order.
func (h *Hierarchy) Leaves() []int {
	return Leaves(h.Lineage())
}

func (h *Hierarchy) Lineage() model.Hierarchy {
	return model.Hierarchy{
		Root:   h.root,
		Events: append([]model.PartitionEvent(nil), h.events...),
	}
}

// Leaves walks a lineage from its root and returns the unsplit networks.
func Leaves(lineage model.Hierarchy) []int {
	children := lineage.ChildMap()
	var out []int
	stack := []int{lineage.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c, ok := children[id]
		if !ok {
			out = append(out, id)
			continue
		}
		stack = append(stack, c[1], c[0])
	}
	return out
}

// ValidateTree checks that a lineage is a binary tree rooted at Root: every
// parent is reachable, no id appears twice and there are no cycles.
func ValidateTree(lineage model.Hierarchy) error {
	children := lineage.ChildMap()
	if len(children) != len(lineage.Events) {
		return fmt.Errorf("lineage: a parent is partitioned more than once")
	}
	seen := map[int]struct{}{}
	stack := []int{lineage.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[id]; dup {
			return fmt.Errorf("lineage: network %d reached twice", id)
		}
		seen[id] = struct{}{}
		if c, ok := children[id]; ok {
			stack = append(stack, c[1], c[0])
		}
	}
	for parent := range children {
		if _, ok := seen[parent]; !ok {
			return fmt.Errorf("lineage: parent %d unreachable from root %d", parent, lineage.Root)
		}
	}
	return nil
}
