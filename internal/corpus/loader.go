package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vietlegal/lawrag/internal/errors"
)

// maxLineBytes bounds a single JSONL record. Statute clauses are short;
// 1MB leaves generous headroom.
const maxLineBytes = 1 << 20

// Load reads a line-delimited JSON corpus snapshot from path.
//
// Each line is one Document record. Blank lines are skipped. A missing file,
// a malformed line, or an empty corpus are all startup failures.
func Load(path string) ([]Document, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCorpusNotFound,
				fmt.Sprintf("corpus snapshot not found: %s", path), err)
		}
		return nil, errors.New(errors.ErrCodeCorpusNotFound,
			fmt.Sprintf("open corpus snapshot %s: %v", path, err), err)
	}
	defer func() { _ = file.Close() }()

	docs, err := Read(file)
	if err != nil {
		return nil, err
	}

	slog.Info("corpus_loaded", slog.String("path", path), slog.Int("documents", len(docs)))
	return docs, nil
}

// Read parses line-delimited Document records from r.
func Read(r io.Reader) ([]Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, errors.New(errors.ErrCodeCorpusMalformed,
				fmt.Sprintf("malformed corpus record at line %d: %v", lineNo, err), err)
		}
		if doc.ID == "" {
			return nil, errors.New(errors.ErrCodeCorpusMalformed,
				fmt.Sprintf("corpus record at line %d has no id", lineNo), nil)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.ErrCodeCorpusMalformed,
			fmt.Sprintf("read corpus: %v", err), err)
	}

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeCorpusEmpty, "corpus snapshot contains no documents", nil)
	}

	return docs, nil
}
