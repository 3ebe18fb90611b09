package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/job"
	"github.com/lingosub/backend/internal/ollama"
	"github.com/lingosub/backend/internal/storage"
	"github.com/lingosub/backend/internal/subtitle"
)

// Service executes translation jobs: it loads the document, walks it through
// the configured backend batch by batch and stores the rendered result.
type Service struct {
	store    *storage.Store
	database *db.Database
	client   *ollama.Client
}

func NewService(store *storage.Store, database *db.Database, client *ollama.Client) *Service {
	return &Service{store: store, database: database, client: client}
}

// HandleJob is the queue handler for translate jobs.
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranslateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("invalid job params: %w", err)
	}
	if params.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}

	backend, err := s.database.GetBackend(params.BackendID)
	if err != nil {
		return fmt.Errorf("backend %d not found: %w", params.BackendID, err)
	}
	if !backend.Enabled {
		return fmt.Errorf("backend %q is disabled", backend.Name)
	}

	model := params.Model
	if model == "" {
		model = backend.Model
	}
	if model == "" {
		return fmt.Errorf("no model requested and backend %q has no default", backend.Name)
	}

	content, err := s.store.ReadOriginal(j.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	doc, err := subtitle.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	opts := Options{
		SourceLang:   params.SourceLang,
		TargetLang:   params.TargetLang,
		Preset:       params.Preset,
		CustomPrompt: params.CustomPrompt,
	}
	runner := NewRunner(s.client, backend.URL, model, opts, params.BatchSize)

	log.Printf("[translate] job %s: %d segments via %q (%s)", j.ID, doc.Len(), backend.Name, model)

	fallbackBatches := 0
	stats, err := runner.Run(ctx, doc, func(p Progress) {
		if p.Fallback {
			fallbackBatches++
		}
		if p.Total > 0 {
			updateProgress(float64(p.Processed) / float64(p.Total))
		}
		log.Printf("[translate] job %s: batch %d/%d done (%d/%d segments)",
			j.ID, p.Batch, p.Batches, p.Processed, p.Total)
	})
	if err != nil {
		return err
	}

	if err := s.store.WriteTranslated(j.DocumentID, subtitle.Format(doc)); err != nil {
		return fmt.Errorf("failed to store translation: %w", err)
	}

	result := job.TranslateResult{
		TranslatedPath:  s.store.TranslatedPath(j.DocumentID),
		Segments:        stats.Total,
		FallbackBatches: fallbackBatches,
		Duration:        stats.Elapsed().Seconds(),
		Throughput:      stats.Throughput(),
	}
	resJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	j.Result = resJSON

	updateProgress(1.0)
	log.Printf("[translate] job %s: finished %d segments in %.1fs (%d fallback batches)",
		j.ID, stats.Total, result.Duration, fallbackBatches)
	return nil
}
