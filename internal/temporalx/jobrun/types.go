package jobrun

const (
	WorkflowName = "job_run"
	ActivityTick = "job_run_tick"
)

// TickResult is what one activity attempt reports back to the workflow. The
// entity fields name the submission or image verification the job settles.
type TickResult struct {
	JobID      string `json:"job_id"`
	JobType    string `json:"job_type,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
	Message    string `json:"message,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
}
