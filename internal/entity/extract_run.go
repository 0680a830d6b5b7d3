package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractRun represents one extraction of a source document for data transfer between layers.
type ExtractRun struct {
	ID         uuid.UUID  `json:"id"`
	SourcePath string     `json:"source_path"`
	Format     string     `json:"format"`
	Pages      int        `json:"pages"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Receipts   int        `json:"receipts"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
