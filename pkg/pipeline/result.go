package pipeline

import "fmt"

// Status is the outcome of processing one file or line.
type Status int

const (
	StatusDone Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one item. Line is 1-based and zero
// for file-level outcomes.
type Outcome struct {
	Path   string
	Line   int
	Status Status
	Err    error
}

// Summary collects outcomes of a batch run. Successful items are only
// counted; skipped and failed ones are kept in Outcomes.
type Summary struct {
	Done     int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusDone:
		s.Done++
		return
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Merge folds another summary into s.
func (s *Summary) Merge(o Summary) {
	s.Done += o.Done
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Outcomes = append(s.Outcomes, o.Outcomes...)
}

func (s Summary) Total() int { return s.Done + s.Skipped + s.Failed }

func (s Summary) HasFailures() bool { return s.Failed > 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d done, %d skipped, %d failed (total: %d)", s.Done, s.Skipped, s.Failed, s.Total())
}
