package symbols

import (
	"context"
	"errors"
)

type chain []Source

// FirstAvailable returns a Source that consults sources in order, moving on
// only when a source reports ErrUnsupported. Any other outcome, including
// other errors, is final.
func FirstAvailable(sources ...Source) Source {
	var c chain
	for _, s := range sources {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}

func (c chain) DocumentSymbols(ctx context.Context, path string) (Result, error) {
	for _, s := range c {
		res, err := s.DocumentSymbols(ctx, path)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		return res, err
	}
	return Result{}, ErrUnsupported
}
