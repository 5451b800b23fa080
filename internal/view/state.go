package view

// State is the dashboard navigation. Values are immutable: every transition
// returns a new State whose Symbol is one of the filtered candidates, or
// empty when the filter leaves none.
type State struct {
	Tab    Tab
	Class  AssetClass
	Query  string
	Symbol string
}

// NewState returns the initial state: Quick Info on the first equity.
func NewState() State {
	return State{Tab: TabQuickInfo, Class: ClassEquities}.normalize()
}

// Candidates returns the class candidates left by the query.
func (s State) Candidates() []string {
	return Filter(s.Class.Candidates(), s.Query)
}

// WithTab selects a panel. Unknown tabs are ignored.
func (s State) WithTab(t Tab) State {
	if !t.Valid() {
		return s
	}
	s.Tab = t
	return s
}

// WithClass switches the asset class and re-derives the symbol.
func (s State) WithClass(c AssetClass) State {
	if !c.Valid() {
		return s
	}
	s.Class = c
	return s.normalize()
}

// WithQuery sets the search text and re-derives the symbol.
func (s State) WithQuery(q string) State {
	s.Query = q
	return s.normalize()
}

// WithSymbol selects symbol when it is among the filtered candidates.
func (s State) WithSymbol(symbol string) State {
	for _, c := range s.Candidates() {
		if c == symbol {
			s.Symbol = symbol
			return s
		}
	}
	return s.normalize()
}

func (s State) normalize() State {
	options := s.Candidates()
	for _, o := range options {
		if o == s.Symbol {
			return s
		}
	}
	s.Symbol = ""
	if len(options) > 0 {
		s.Symbol = options[0]
	}
	return s
}
