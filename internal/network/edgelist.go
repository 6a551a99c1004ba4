package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadEdgeList parses "source,target" rows of 0-based agent indices. A leading
// header row and '#' comments are allowed. It returns the edges and the node
// count implied by the largest index.
func ReadEdgeList(r io.Reader) ([]Edge, int, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var edges []Edge
	maxNode := -1
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		line++
		a, errA := strconv.Atoi(strings.TrimSpace(record[0]))
		b, errB := strconv.Atoi(strings.TrimSpace(record[1]))
		if errA != nil || errB != nil {
			if line == 1 {
				continue
			}
			return nil, 0, fmt.Errorf("edge list row %d: non-integer endpoint %q", line, record)
		}
		if a < 0 || b < 0 {
			return nil, 0, fmt.Errorf("edge list row %d: negative endpoint", line)
		}
		if a == b {
			return nil, 0, fmt.Errorf("edge list row %d: self loop on %d", line, a)
		}
		edges = append(edges, NewEdge(a, b))
		if a > maxNode {
			maxNode = a
		}
		if b > maxNode {
			maxNode = b
		}
	}
	if len(edges) == 0 {
		return nil, 0, fmt.Errorf("edge list is empty")
	}
	return edges, maxNode + 1, nil
}

func LoadEdgeList(path string) ([]Edge, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	edges, n, err := ReadEdgeList(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return edges, n, nil
}

// WriteEdgeList writes edges in the format ReadEdgeList accepts.
func WriteEdgeList(w io.Writer, edges []Edge) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"source", "target"}); err != nil {
		return err
	}
	for _, e := range edges {
		if err := writer.Write([]string{strconv.Itoa(e[0]), strconv.Itoa(e[1])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
