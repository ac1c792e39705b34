// internal/models/result.go
package models

type StageStatus string

const (
	StatusSuccess  StageStatus = "success"
	StatusDegraded StageStatus = "degraded"
	StatusFailed   StageStatus = "failed"
)

// Result is what every pipeline stage returns. Degraded results carry a
// usable Value built from defaults, with Err explaining why.
type Result[T any] struct {
	Value  T
	Status StageStatus
	Err    error
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusSuccess}
}

func Degraded[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Status: StatusDegraded, Err: err}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess || r.Status == StatusDegraded
}
