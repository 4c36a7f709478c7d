package model

// RunSpec configures one matching invocation.
type RunSpec struct {
	// LeftField and RightField name the description field on each side.
	LeftField  string
	RightField string

	// MinThreshold is the lower bound on reported scores, as a percentage.
	MinThreshold float64

	// MaxResults caps the final ranked output size.
	MaxResults int

	// TokenDiff attaches a token-overlap breakdown to every result.
	TokenDiff bool

	// Unfiltered selects the direct full sweep: no candidate pre-filtering,
	// no chunking, no early exits. Useful for small inputs and for auditing
	// what the filtered path prunes.
	Unfiltered bool
}

// SweepStats summarizes what one sweep did. All counts are per-invocation.
type SweepStats struct {
	LeftTotal    int  `json:"left_total"`
	RightTotal   int  `json:"right_total"`
	LeftDropped  int  `json:"left_dropped"`
	RightDropped int  `json:"right_dropped"`
	Considered   int  `json:"pairs_considered"`
	Filtered     int  `json:"pairs_filtered"`
	Scored       int  `json:"pairs_scored"`
	Collected    int  `json:"matches_collected"`
	RowBreaks    int  `json:"row_breaks"`
	EarlyExit    bool `json:"early_exit"`
}

// Job is one queued matching invocation: the run id, immutable snapshots of
// both record lists, and the run spec.
type Job struct {
	RunID string
	Left  []Record
	Right []Record
	Spec  RunSpec
}
