package cleaning

// StepStatus is the outcome of one cleaning step
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusSkipped StepStatus = "skipped"
	StatusFailed  StepStatus = "failed"
)

// StepResult reports what one requested step did
type StepResult struct {
	Step       string     `json:"step"`
	Status     StepStatus `json:"status"`
	Columns    []string   `json:"columns,omitempty"`
	Message    string     `json:"message,omitempty"`
	RowsBefore int        `json:"rows_before"`
	RowsAfter  int        `json:"rows_after"`
}

// Report lists the requested steps in the order they ran
type Report []StepResult

// Count returns how many steps ended with the given status
func (r Report) Count(status StepStatus) int {
	n := 0
	for _, s := range r {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Step finds the result of a step by name
func (r Report) Step(name string) (StepResult, bool) {
	for _, s := range r {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}
