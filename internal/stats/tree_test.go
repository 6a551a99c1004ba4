package stats

import (
	"bytes"
	"testing"

	"langchange/internal/model"
)

func TestRenderTree(t *testing.T) {
	h := model.Hierarchy{Root: 0, Events: []model.PartitionEvent{
		{Parent: 0, Children: [2]int{1, 2}, Step: 10},
		{Parent: 1, Children: [2]int{3, 4}, Step: 20},
	}}
	var buf bytes.Buffer
	if err := RenderTree(&buf, h); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "network 0\n" +
		"├── network 1 (step 10)\n" +
		"│   ├── network 3 (step 20)\n" +
		"│   └── network 4 (step 20)\n" +
		"└── network 2 (step 10)\n"
	if buf.String() != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderTreeSingleNetwork(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTree(&buf, model.Hierarchy{Root: 0}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "network 0\n" {
		t.Fatalf("unexpected tree: %q", buf.String())
	}
}
