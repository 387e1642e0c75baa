package cracker

import "sync"

// defaultBatchSize bounds per-batch overhead far below per-candidate cost
// while keeping memory use (batch size * worker count) modest.
const defaultBatchSize = 4096

// Source yields candidate passwords lazily and in a deterministic order. A
// nil, non-error return with ok=false marks exhaustion.
type Source interface {
	Next() (candidate string, ok bool, err error)
}

// batchIterator wraps a Source behind a single mutex, handing whole batches
// to callers. Coarse locking is fine: batches are large enough that lock
// contention across workers is negligible (spec §5).
type batchIterator struct {
	mu        sync.Mutex
	src       Source
	batchSize int
	err       error
}

func newBatchIterator(src Source, batchSize int) *batchIterator {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &batchIterator{src: src, batchSize: batchSize}
}

// pullBatch returns up to batchSize candidates, or fewer at end of stream.
// ok is false only when the batch is empty (stream exhausted, or a
// terminal error occurred — check err).
func (b *batchIterator) pullBatch() (batch []string, ok bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return nil, false, b.err
	}

	out := make([]string, 0, b.batchSize)
	for len(out) < b.batchSize {
		cand, ok, err := b.src.Next()
		if err != nil {
			b.err = err
			break
		}
		if !ok {
			break
		}
		out = append(out, cand)
	}

	if len(out) == 0 {
		return nil, false, b.err
	}
	return out, true, nil
}
