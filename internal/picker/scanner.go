package picker

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// defaultBatchSize is how many paths a scan accumulates before emitting a
// batch and checking the cancel flag.
const defaultBatchSize = 256

// Batch is one chunk of scan results. Done marks the final batch of a scan
// (possibly empty). Consumers must drop batches whose Generation is no
// longer the scanner's current one.
type Batch struct {
	Generation uint64
	Paths      []string
	Done       bool
}

// Scanner walks a directory tree on its own goroutine, streaming paths in
// batches. Starting a new scan bumps the generation, which both marks the
// new scan's batches and strands the previous scan's; Cancel stops the
// walker at the next batch boundary.
type Scanner struct {
	root      string
	batchSize int

	generation atomic.Uint64
	cancelled  atomic.Bool
}

// NewScanner returns a scanner rooted at root.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root, batchSize: defaultBatchSize}
}

// Generation returns the id of the current scan; batches carrying an older
// generation are stale.
func (s *Scanner) Generation() uint64 {
	return s.generation.Load()
}

// Cancel stops the in-flight scan at its next batch boundary.
func (s *Scanner) Cancel() {
	s.cancelled.Store(true)
}

// Scan starts a new walk and returns its batch channel and generation. Any
// previous scan is implicitly superseded: its remaining batches carry the
// old generation and its walker stops at the next boundary. The channel is
// closed after the Done batch; a cancelled or superseded scan closes it
// without sending one.
func (s *Scanner) Scan() (<-chan Batch, uint64) {
	gen := s.generation.Add(1)
	s.cancelled.Store(false)

	ch := make(chan Batch, 8)
	go s.walk(gen, ch)
	return ch, gen
}

func (s *Scanner) walk(gen uint64, ch chan<- Batch) {
	defer close(ch)

	batch := make([]string, 0, s.batchSize)
	flush := func() bool {
		if s.cancelled.Load() || s.generation.Load() != gen {
			return false
		}
		if len(batch) > 0 {
			ch <- Batch{Generation: gen, Paths: batch}
			batch = make([]string, 0, s.batchSize)
		}
		return true
	}

	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "target") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		batch = append(batch, rel)
		if len(batch) >= s.batchSize {
			if !flush() {
				return fs.SkipAll
			}
		}
		return nil
	})

	if flush() {
		ch <- Batch{Generation: gen, Done: true}
	}
}
