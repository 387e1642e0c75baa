// Package cracker implements the parallel candidate-generation and
// dispatch engine: it keeps every worker saturated against a shared
// candidate stream, calls into the crypto kernel once per candidate, and
// terminates early on the first verified match (spec §4.B, §5).
package cracker

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashlock/wpacrack/internal/core/domain"
	"github.com/hashlock/wpacrack/internal/core/services/crypto"
)

// progressInterval bounds how often the progress sink is invoked (spec:
// "at most once per ~250ms from a single reporter").
const progressInterval = 250 * time.Millisecond

// VerifyFunc matches crypto.Verify's signature; tests substitute a cheap
// stand-in so engine-dispatch behavior can be exercised without paying for
// real PBKDF2 iterations.
type VerifyFunc func(candidate string, hs *domain.Handshake) bool

// Engine runs candidate streams against a single handshake.
type Engine struct {
	verify VerifyFunc
}

// New returns an Engine that verifies candidates with the real crypto
// kernel. Use NewWithVerifier in tests to inject a cheaper stand-in.
func New() *Engine {
	return &Engine{verify: crypto.Verify}
}

// NewWithVerifier returns an Engine using a caller-supplied verify function.
func NewWithVerifier(verify VerifyFunc) *Engine {
	return &Engine{verify: verify}
}

// CrackWordlist attempts every candidate src yields (after length filtering:
// 8-63 UTF-8 bytes per the WPA passphrase bounds; blank lines already
// skipped by the wordlist source) against handshake.
func (e *Engine) CrackWordlist(handshake *domain.Handshake, src Source, opts domain.CrackOptions) (domain.CrackResult, error) {
	filtered := &lengthFilterSource{inner: src}
	return e.crack(handshake, filtered, opts)
}

// CrackNumeric enumerates every digit-length in [minDigits,maxDigits],
// ascending length and ascending numeric value within a length, starting at
// 0 (spec §9 Open Question i).
func (e *Engine) CrackNumeric(handshake *domain.Handshake, minDigits, maxDigits int, opts domain.CrackOptions) (domain.CrackResult, error) {
	src, err := newNumericSource(minDigits, maxDigits)
	if err != nil {
		return domain.CrackResult{}, err
	}
	return e.crack(handshake, src, opts)
}

func (e *Engine) crack(handshake *domain.Handshake, src Source, opts domain.CrackOptions) (result domain.CrackResult, err error) {
	if err := handshake.Validate(); err != nil {
		return domain.CrackResult{}, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	iter := newBatchIterator(src, defaultBatchSize)

	var attempts uint64
	var found int32
	var winner atomic.Value  // string
	var firstErr atomic.Value // error, set by whichever worker hits it first

	start := time.Now()
	stopProgress := e.startProgressReporter(&attempts, start, opts.ProgressSink)
	defer stopProgress()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					firstErr.CompareAndSwap(nil, fmt.Errorf("%w: worker panic: %v", domain.ErrInternal, r))
					atomic.StoreInt32(&found, 1) // unblock siblings
				}
			}()
			e.runWorker(handshake, iter, &attempts, &found, &winner, &firstErr)
		}()
	}
	wg.Wait()

	if v := firstErr.Load(); v != nil {
		return domain.CrackResult{}, v.(error)
	}

	elapsed := time.Since(start)
	result = domain.CrackResult{
		Attempts: atomic.LoadUint64(&attempts),
		Duration: elapsed,
	}
	if elapsed > 0 {
		result.Rate = float64(result.Attempts) / elapsed.Seconds()
	}
	if w := winner.Load(); w != nil {
		pw := w.(string)
		result.Password = &pw
	}
	return result, nil
}

// runWorker pulls batches until the stream is exhausted or found flips,
// verifying each candidate in the batch's iteration order.
func (e *Engine) runWorker(hs *domain.Handshake, iter *batchIterator, attempts *uint64, found *int32, winner, firstErr *atomic.Value) {
	for atomic.LoadInt32(found) == 0 {
		batch, ok, err := iter.pullBatch()
		if err != nil {
			firstErr.CompareAndSwap(nil, err)
			atomic.StoreInt32(found, 1)
			return
		}
		if !ok {
			return
		}

		for _, candidate := range batch {
			if e.verify(candidate, hs) {
				winner.CompareAndSwap(nil, candidate)
				atomic.StoreInt32(found, 1)
				atomic.AddUint64(attempts, 1)
				return
			}
			atomic.AddUint64(attempts, 1)

			if atomic.LoadInt32(found) != 0 {
				return
			}
		}
	}
}

// startProgressReporter launches (if sink != nil) a goroutine that invokes
// sink at most once per progressInterval, and returns a function to stop it.
func (e *Engine) startProgressReporter(attempts *uint64, start time.Time, sink domain.ProgressFunc) func() {
	if sink == nil {
		return func() {}
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sink(atomic.LoadUint64(attempts), time.Since(start))
			case <-stop:
				sink(atomic.LoadUint64(attempts), time.Since(start))
				return
			}
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}

// lengthFilterSource drops candidates outside the WPA passphrase length
// bounds [8,63] octets, and blank lines (already filtered by the wordlist
// adapter, but re-checked here so CrackWordlist is correct against any
// Source implementation).
type lengthFilterSource struct {
	inner Source
}

func (f *lengthFilterSource) Next() (string, bool, error) {
	for {
		cand, ok, err := f.inner.Next()
		if err != nil || !ok {
			return "", ok, err
		}
		if cand == "" {
			continue
		}
		n := len(cand)
		if n < domain.MinPassLen || n > domain.MaxPassLen {
			continue
		}
		return cand, true, nil
	}
}
