package domain

import "time"

// ResultCode is the completion code of one run.
type ResultCode string

// Completion codes.
const (
	ResultDone ResultCode = "DONE"
	ResultFail ResultCode = "FAIL"
)

// Result is the outcome of one dictionary creation run. Failure detail is
// logged, not returned.
type Result struct {
	RunID   string
	Code    ResultCode
	Tables  int
	Fields  int
	Elapsed time.Duration
}

// OK reports whether the run completed.
func (r *Result) OK() bool { return r.Code == ResultDone }
