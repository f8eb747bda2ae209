package core

import (
	"maps"
	"slices"
)

// Symbol is the canonical name of a formula variable, e.g. "x_bar".
type Symbol string

func (s Symbol) String() string { return string(s) }

// Variable is one named slot of a formula.
type Variable struct {
	Name    Symbol `json:"name"`
	Value   Value  `json:"-"`
	Derived bool   `json:"derived"`
}

// VariableSet maps symbols to variables for a single invocation.
// It is never mutated in place; every With* method returns a copy.
type VariableSet struct {
	vars map[Symbol]Variable
}

// NewVariableSet builds a set from vars; later duplicates win.
func NewVariableSet(vars ...Variable) VariableSet {
	m := make(map[Symbol]Variable, len(vars))
	for _, v := range vars {
		m[v.Name] = v
	}
	return VariableSet{vars: m}
}

func (s VariableSet) Len() int {
	return len(s.vars)
}

func (s VariableSet) Get(sym Symbol) (Variable, bool) {
	v, ok := s.vars[sym]
	return v, ok
}

// Has reports whether sym was supplied at all, known or unknown.
func (s VariableSet) Has(sym Symbol) bool {
	_, ok := s.vars[sym]
	return ok
}

// IsKnown reports whether sym holds a known number.
func (s VariableSet) IsKnown(sym Symbol) bool {
	v, ok := s.vars[sym]
	return ok && v.Value.IsKnown()
}

func (s VariableSet) Number(sym Symbol) (Number, bool) {
	v, ok := s.vars[sym]
	if !ok {
		return Number{}, false
	}
	return v.Value.Number()
}

func (s VariableSet) Float(sym Symbol) (float64, bool) {
	n, ok := s.Number(sym)
	return n.Float64(), ok
}

// MustFloat returns the float value of sym or zero; callers check
// presence beforehand.
func (s VariableSet) MustFloat(sym Symbol) float64 {
	f, _ := s.Float(sym)
	return f
}

// With returns a copy with sym set to a supplied value.
func (s VariableSet) With(sym Symbol, v Value) VariableSet {
	return s.put(Variable{Name: sym, Value: v})
}

// WithDerived returns a copy with sym set to a computed number.
func (s VariableSet) WithDerived(sym Symbol, n Number) VariableSet {
	return s.put(Variable{Name: sym, Value: Known(n), Derived: true})
}

// Without returns a copy lacking sym.
func (s VariableSet) Without(sym Symbol) VariableSet {
	m := maps.Clone(s.vars)
	delete(m, sym)
	return VariableSet{vars: m}
}

func (s VariableSet) put(v Variable) VariableSet {
	m := maps.Clone(s.vars)
	if m == nil {
		m = make(map[Symbol]Variable, 1)
	}
	m[v.Name] = v
	return VariableSet{vars: m}
}

// Unknowns lists the symbols explicitly marked unknown, sorted.
func (s VariableSet) Unknowns() []Symbol {
	var out []Symbol
	for sym, v := range s.vars {
		if !v.Value.IsKnown() {
			out = append(out, sym)
		}
	}
	slices.Sort(out)
	return out
}

// Symbols lists every symbol in the set, sorted.
func (s VariableSet) Symbols() []Symbol {
	return slices.Sorted(maps.Keys(s.vars))
}

// Missing returns the symbols of want that do not hold a known number.
func (s VariableSet) Missing(want ...Symbol) []Symbol {
	var out []Symbol
	for _, sym := range want {
		if !s.IsKnown(sym) {
			out = append(out, sym)
		}
	}
	return out
}
