package symbols

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Collect queries src for the symbols of the document at path and returns
// its callable members as entries. It never fails: errors and empty answers
// yield a single placeholder entry.
func Collect(ctx context.Context, src Source, path string) []Entry {
	var res Result
	if src != nil {
		r, err := src.DocumentSymbols(ctx, path)
		switch {
		case errors.Is(err, ErrUnsupported):
			log.Debug().Str("file", path).Msg("symbols: no source for document")
		case err != nil:
			log.Warn().Err(err).Str("file", path).Msg("symbols: query failed")
		case r.Empty():
			log.Debug().Str("file", path).Msg("symbols: source returned nothing")
		default:
			res = r
		}
	}

	var entries []Entry
	if len(res.Tree) > 0 {
		entries = FromTree(res.Tree)
	} else {
		entries = FromFlat(res.Flat)
	}
	log.Debug().Str("file", path).Int("entries", len(entries)).Msg("symbols: collected")

	if len(entries) == 0 {
		return []Entry{Placeholder(NoSymbolsLabel)}
	}
	return entries
}

// FromFlat maps each callable symbol to an entry whose context is the
// symbol's own container name.
func FromFlat(syms []Information) []Entry {
	var out []Entry
	for _, s := range syms {
		if !s.Kind.Callable() {
			continue
		}
		out = append(out, NewEntry(s.Name, s.Container, s.Range))
	}
	return out
}

// FromTree flattens a symbol tree one level deep. Callable top-level symbols
// come first, followed by the callable children of every top-level symbol,
// whether or not the parent itself was kept. Grandchildren are ignored.
func FromTree(syms []DocumentSymbol) []Entry {
	var out []Entry
	add := func(list []DocumentSymbol, parent string) {
		for _, s := range list {
			if s.Kind.Callable() {
				out = append(out, NewEntry(s.Name, parent, s.Range))
			}
		}
	}

	add(syms, "")
	for _, parent := range syms {
		add(parent.Children, parent.Name)
	}
	return out
}
