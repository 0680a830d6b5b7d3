package constants

// RunStatus is the canonical status for rows in extract_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusQueued  RunStatus = "QUEUED"  // optional: queued for processing
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusOK      RunStatus = "OK"      // records extracted and stored
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
