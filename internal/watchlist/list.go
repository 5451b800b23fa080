// Package watchlist holds the user's ordered, duplicate-free list of ticker
// symbols, its JSON file store, and the change broker other surfaces listen on.
package watchlist

// List is an ordered sequence of symbols without duplicates.
type List []string

// Contains reports whether symbol is in items. Comparison is exact.
func Contains(items List, symbol string) bool {
	for _, s := range items {
		if s == symbol {
			return true
		}
	}
	return false
}

// Add returns a copy of items with symbol appended if not already present.
func Add(items List, symbol string) List {
	out := make(List, len(items), len(items)+1)
	copy(out, items)
	if Contains(items, symbol) {
		return out
	}
	return append(out, symbol)
}

// Remove returns a copy of items without the first occurrence of symbol.
func Remove(items List, symbol string) List {
	out := make(List, 0, len(items))
	removed := false
	for _, s := range items {
		if !removed && s == symbol {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out
}

// Clone returns an independent copy of items.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}
