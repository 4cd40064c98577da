package symbols

// NoSymbolsLabel is the label of the placeholder shown when a document has
// no callable symbols.
const NoSymbolsLabel = "No symbols found"

// Entry is a single jump target. Entries are values and cannot be changed
// after construction.
type Entry struct {
	label    string
	context  string
	rng      Range
	hasRange bool
}

// NewEntry returns a navigable entry for a symbol spanning r.
func NewEntry(label, context string, r Range) Entry {
	return Entry{label: label, context: context, rng: r, hasRange: true}
}

// Placeholder returns an inert entry that carries only a label.
func Placeholder(label string) Entry {
	return Entry{label: label}
}

// Label is the symbol's display name.
func (e Entry) Label() string { return e.label }

// Context is the name of the enclosing container, or "".
func (e Entry) Context() string { return e.context }

// Range returns the span the entry refers to. ok is false for placeholders.
func (e Entry) Range() (r Range, ok bool) { return e.rng, e.hasRange }

// Navigable reports whether the entry can be previewed or jumped to.
func (e Entry) Navigable() bool { return e.hasRange }
