package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranslate JobType = "translate"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued translation task
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	DocumentID  string          `json:"document_id"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranslateParams are parameters for a translation job
type TranslateParams struct {
	BackendID    int64  `json:"backend_id"`              // registered backend to dial
	Model        string `json:"model,omitempty"`         // overrides the backend's default model
	SourceLang   string `json:"source_lang,omitempty"`   // "auto" or empty lets the model detect
	TargetLang   string `json:"target_lang"`             // "ko", "en", "ja", etc.
	Preset       string `json:"preset,omitempty"`        // "general", "dialogue", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt,omitempty"` // extra instructions appended to the preset
	BatchSize    int    `json:"batch_size,omitempty"`    // segments per model call, 0 for the default
}

// TranslateResult is the output of a successful translation
type TranslateResult struct {
	TranslatedPath  string  `json:"translated_path"`  // where the rendered translation was written
	Segments        int     `json:"segments"`         // entries in the document
	FallbackBatches int     `json:"fallback_batches"` // batches that kept their original text
	Duration        float64 `json:"duration"`         // processing time in seconds
	Throughput      float64 `json:"throughput"`       // segments per second
}

// JobHandler processes a job. Implementations are provided by the translate package.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
