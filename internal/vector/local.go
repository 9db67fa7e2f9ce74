package vector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/vietlegal/lawrag/internal/errors"
)

// LocalIndex is an in-process HNSW vector index over a precomputed clause
// embedding snapshot. It serves deployments without a hosted index.
type LocalIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]

	// string clause ID <-> internal graph key
	idMap   map[string]uint64
	keyMap  map[uint64]string
	meta    map[string]map[string]string
	nextKey uint64

	dimensions int
	closed     bool
}

var _ Index = (*LocalIndex)(nil)

// snapshotRecord is one line of a vector snapshot file.
type snapshotRecord struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// NewLocalIndex creates an empty local index expecting vectors of the
// given dimension.
func NewLocalIndex(dimensions int) *LocalIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &LocalIndex{
		graph:      graph,
		idMap:      make(map[string]uint64),
		keyMap:     make(map[uint64]string),
		meta:       make(map[string]map[string]string),
		dimensions: dimensions,
	}
}

// LoadSnapshot reads a JSONL vector snapshot and builds a local index
// from it. Each line holds one clause: {"id", "values", "metadata"}.
func LoadSnapshot(path string, dimensions int) (*LocalIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCorpusNotFound,
			fmt.Sprintf("vector snapshot not found: %s", path), err)
	}
	defer func() { _ = f.Close() }()

	ix := NewLocalIndex(dimensions)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec snapshotRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errors.New(errors.ErrCodeCorpusMalformed,
				fmt.Sprintf("vector snapshot line %d: %v", lineNo, err), err)
		}
		if rec.ID == "" || len(rec.Values) == 0 {
			return nil, errors.New(errors.ErrCodeCorpusMalformed,
				fmt.Sprintf("vector snapshot line %d: missing id or values", lineNo), nil)
		}

		if err := ix.Add(rec.ID, rec.Values, rec.Metadata); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.ErrCodeCorpusMalformed, "reading vector snapshot", err)
	}

	if ix.Len() == 0 {
		return nil, errors.New(errors.ErrCodeCorpusEmpty, "vector snapshot holds no vectors", nil)
	}

	slog.Info("vector_snapshot_loaded",
		slog.String("path", path),
		slog.Int("vectors", ix.Len()),
		slog.Int("dimensions", dimensions))

	return ix, nil
}

// Add inserts one vector. Re-adding an existing ID replaces it via lazy
// deletion: the old graph node is orphaned rather than removed.
func (ix *LocalIndex) Add(id string, vec []float32, metadata map[string]string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return errors.New(errors.ErrCodeVectorUnavailable, "local index is closed", nil)
	}
	if ix.dimensions > 0 && len(vec) != ix.dimensions {
		return errors.New(errors.ErrCodeCorpusMalformed,
			fmt.Sprintf("vector %q has dimension %d, want %d", id, len(vec), ix.dimensions), nil)
	}

	if oldKey, ok := ix.idMap[id]; ok {
		delete(ix.keyMap, oldKey)
	}

	key := ix.nextKey
	ix.nextKey++
	ix.graph.Add(hnsw.MakeNode(key, vec))
	ix.idMap[id] = key
	ix.keyMap[key] = id
	ix.meta[id] = metadata
	return nil
}

// Query returns the topK nearest matches by cosine similarity.
func (ix *LocalIndex) Query(_ context.Context, vec []float32, topK int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.closed {
		return nil, errors.New(errors.ErrCodeVectorUnavailable, "local index is closed", nil)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if ix.graph.Len() == 0 {
		return []Match{}, nil
	}

	nodes := ix.graph.Search(vec, topK)

	matches := make([]Match, 0, len(nodes))
	for _, node := range nodes {
		id, ok := ix.keyMap[node.Key]
		if !ok {
			// orphaned by a replace
			continue
		}
		// CosineDistance is 1 - cosine similarity.
		sim := 1 - float64(ix.graph.Distance(vec, node.Value))
		matches = append(matches, Match{ID: id, Score: sim, Metadata: ix.meta[id]})
	}
	return matches, nil
}

// Len returns the number of live vectors.
func (ix *LocalIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.idMap)
}

// Close marks the index closed.
func (ix *LocalIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	return nil
}
