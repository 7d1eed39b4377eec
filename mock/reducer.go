package mock

import "github.com/fwojciec/structex"

var _ structex.Reducer = (*Reducer)(nil)

// Reducer is a mock implementation of structex.Reducer.
type Reducer struct {
	ReduceFn func(html string, selector string) (string, error)
}

func (r *Reducer) Reduce(html string, selector string) (string, error) {
	return r.ReduceFn(html, selector)
}
