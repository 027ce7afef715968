package dto

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StageResponse carries one stage's rendered CSV output and the
// non-fatal warnings its rows produced.
type StageResponse struct {
	Rows     int      `json:"rows"`
	CSV      string   `json:"csv,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// PipelineResponse is the full result of one pipeline run. DisplayCSV
// accompanies the rewards stage with a human-readable view of the
// matched rows.
type PipelineResponse struct {
	RunID        string         `json:"run_id"`
	Outflows     *StageResponse `json:"outflows,omitempty"`
	Transfers    *StageResponse `json:"transfers,omitempty"`
	Rewards      *StageResponse `json:"rewards,omitempty"`
	Suppressions *StageResponse `json:"suppressions,omitempty"`
	DisplayCSV   string         `json:"display_csv,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
}
