package queue

import (
	"context"
	"errors"
)

// Map is a one-shot convenience: it runs mapper over items with an executor
// built from opts and returns the outcomes in item order.
//
// Example:
//
//	outcomes, err := queue.Map(ctx, urls, fetch, queue.WithMaxConcurrency(8))
func Map[T any, R any](ctx context.Context, items []T, mapper Mapper[T, R], opts ...Option) ([]Outcome[R], error) {
	return New[T, R](opts...).SetData(items).Every(ctx, mapper)
}

// Values returns the value of every outcome, in order. Failed slots hold the
// zero value of R.
func Values[R any](outcomes []Outcome[R]) []R {
	values := make([]R, len(outcomes))
	for i, o := range outcomes {
		values[i] = o.Value
	}
	return values
}

// Errors returns the error of every outcome, in order. Successful slots are nil.
func Errors[R any](outcomes []Outcome[R]) []error {
	errs := make([]error, len(outcomes))
	for i, o := range outcomes {
		errs[i] = o.Err
	}
	return errs
}

// Join combines the errors of all failed outcomes into one error, or returns
// nil when every task succeeded.
func Join[R any](outcomes []Outcome[R]) error {
	return errors.Join(Errors(outcomes)...)
}

// Flatten returns the untagged view of the outcomes: each slot holds the
// task's value on success and its error on failure. Callers must type-switch
// on the entries to tell the two apart.
func Flatten[R any](outcomes []Outcome[R]) []any {
	flat := make([]any, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			flat[i] = o.Err
			continue
		}
		flat[i] = o.Value
	}
	return flat
}
