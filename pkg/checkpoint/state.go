// Package checkpoint persists the progress of a long sequence run so that a
// restart resumes at the first unsolved n instead of recomputing.
package checkpoint

// Progress tracks how far a run has advanced.
type Progress struct {
	Start int `json:"start"`
	// End is the last n of the run; zero means open-ended.
	End int `json:"end"`
	// Next is the first n not yet solved. Every n below it was emitted.
	Next      int   `json:"next"`
	Completed int   `json:"completed"`
	Failed    []int `json:"failed"`
}

// Metadata holds checkpoint metadata for validation and resume.
type Metadata struct {
	Version   int               `json:"version"`
	RunID     string            `json:"run_id"`
	RunHash   string            `json:"run_hash"`
	CreatedAt string            `json:"created_at"`
	Strategy  string            `json:"strategy"`
	Progress  Progress          `json:"progress"`
	Checksums map[string]string `json:"checksums"`
}
