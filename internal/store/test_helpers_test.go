package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBatch reconciles a small mixed batch: a V1 match, a malformed
// record, a V2 match at seed 31, an unsupported variant and a V2 miss.
func createTestBatch(t *testing.T, runID string, seq int64) *engine.Batch {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	searcher, err := engine.NewSearcher(ir.DefaultProfile(), engine.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewSearcher() failed: %v", err)
	}
	runner := engine.NewRunner(searcher,
		engine.WithRunLogger(logger),
		engine.WithRunIDs(testutil.NewFixedRunIDGenerator(runID)),
		engine.WithClock(engine.NewClockAt(seq-1)),
	)

	raws := []ir.RawRecord{
		{Index: 0, Version: "fingerprint-v1", Components: []byte(testutil.V1ComponentsJSON), Fingerprint: testutil.V1Hash},
		{Index: 1, Version: "fingerprint-v2", Components: []byte(`{"audio":`), Fingerprint: testutil.V2DirectHash},
		{Index: 2, Version: "fingerprint-v2", Components: []byte(testutil.V2ComponentsJSON), Fingerprint: testutil.V2AllMissingHash31},
		{Index: 3, Version: "fingerprint-v9", Components: []byte(`{}`), Fingerprint: testutil.UnmatchableHash},
		{Index: 4, Version: "fingerprint-v2", Components: []byte(testutil.V2ComponentsJSON), Fingerprint: testutil.UnmatchableHash},
	}
	batch, err := runner.Run(context.Background(), raws)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return batch
}
