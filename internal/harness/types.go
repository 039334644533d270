package harness

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Seq     int          `json:"seq"`
	Type    string       `json:"type"` // "import" or "list"
	Filter  string       `json:"filter,omitempty"`
	Sort    string       `json:"sort,omitempty"`
	Outcome string       `json:"outcome"` // "ok" or an error code
	Count   int          `json:"count"`
	BatchID string       `json:"batch_id,omitempty"`
	Rows    []RowSummary `json:"rows,omitempty"`
}

// RowSummary is the part of a listed row that a trace keeps.
type RowSummary struct {
	ID        string  `json:"id"`
	RiskScore int     `json:"risk_score"`
	RankScore float64 `json:"rank_score"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends an event, assigning the next sequence number.
func (r *Result) addTrace(ev TraceEvent) TraceEvent {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
	return ev
}
