package engine

// Progress is one typed progress notification emitted at a batch boundary.
// Percentages within one sweep are monotonically non-decreasing and reach
// exactly 100 only with the completion event.
type Progress struct {
	Percent   int `json:"percent"`
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Collected int `json:"collected"`
}

// ProgressFunc receives progress notifications between batches. It is called
// on the sweep goroutine, so it must not block.
type ProgressFunc func(Progress)

// Notify adapts a progress channel to a ProgressFunc. Sends never block: a
// slow receiver misses intermediate events, not the sweep.
func Notify(events chan<- Progress) ProgressFunc {
	return func(p Progress) {
		select {
		case events <- p:
		default:
		}
	}
}
