package mock

import "github.com/fwojciec/structex"

var _ structex.Converter = (*Converter)(nil)

// Converter is a mock implementation of structex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
