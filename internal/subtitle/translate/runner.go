package translate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lingosub/backend/internal/subtitle"
)

// DefaultBatchSize is how many segments go into one model call when the
// request does not say otherwise.
const DefaultBatchSize = 10

// State is the lifecycle of a Runner. A runner is single-use: it moves from
// idle through running to complete and never back.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
)

// Generator produces one model completion for a prompt. *ollama.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, address, model, prompt string) (string, error)
}

// Progress is emitted after each batch has been written back to the document.
type Progress struct {
	Batch     int  `json:"batch"`
	Batches   int  `json:"batches"`
	Processed int  `json:"processed"`
	Total     int  `json:"total"`
	Fallback  bool `json:"fallback"`
}

// Runner walks a document batch by batch, sending each batch through the
// generator and writing the decoded translations back. A failed batch keeps
// its original text and the run continues.
type Runner struct {
	gen       Generator
	address   string
	model     string
	opts      Options
	batchSize int

	mu    sync.Mutex
	state State
	stats Stats
}

// NewRunner builds a runner for one document pass. A non-positive batchSize
// falls back to DefaultBatchSize.
func NewRunner(gen Generator, address, model string, opts Options, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{
		gen:       gen,
		address:   address,
		model:     model,
		opts:      opts,
		batchSize: batchSize,
		state:     StateIdle,
	}
}

// State reports where the runner is in its lifecycle.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns the current run statistics.
func (r *Runner) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Run translates doc in place, batch by batch in document order. onProgress,
// when non-nil, is called once per batch after the batch's translations have
// been written. Run returns an error if called more than once or if ctx is
// canceled between batches; a generate failure is not an error, the batch
// keeps its original text.
func (r *Runner) Run(ctx context.Context, doc *subtitle.Document, onProgress func(Progress)) (Stats, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		stats := r.stats
		r.mu.Unlock()
		return stats, fmt.Errorf("translation run already started (state %s)", state)
	}
	r.state = StateRunning
	r.stats = Stats{Total: doc.Len(), StartedAt: time.Now()}
	r.mu.Unlock()

	total := doc.Len()
	batches := (total + r.batchSize - 1) / r.batchSize

	for start := 0; start < total; start += r.batchSize {
		if err := ctx.Err(); err != nil {
			return r.Snapshot(), err
		}

		end := start + r.batchSize
		if end > total {
			end = total
		}
		originals := make([]string, 0, end-start)
		for _, entry := range doc.Entries[start:end] {
			originals = append(originals, entry.Text)
		}
		batchNo := start/r.batchSize + 1

		payload := EncodeSegments(originals)
		prompt := BuildPrompt(payload, len(originals), r.opts)

		decoded := originals
		fallback := false
		response, err := r.gen.Generate(ctx, r.address, r.model, prompt)
		if err != nil {
			log.Printf("[translate] batch %d/%d failed, keeping original text: %v", batchNo, batches, err)
			fallback = true
		} else {
			decoded = DecodeSegments(response, originals)
		}

		for i := range decoded {
			doc.Entries[start+i].Translated = decoded[i]
		}

		r.mu.Lock()
		r.stats.Processed += len(originals)
		processed := r.stats.Processed
		r.mu.Unlock()

		if onProgress != nil {
			onProgress(Progress{
				Batch:     batchNo,
				Batches:   batches,
				Processed: processed,
				Total:     total,
				Fallback:  fallback,
			})
		}
	}

	r.mu.Lock()
	r.stats.CompletedAt = time.Now()
	r.state = StateComplete
	stats := r.stats
	r.mu.Unlock()
	return stats, nil
}
