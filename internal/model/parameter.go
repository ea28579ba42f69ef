package model

// ParameterSource is the provenance tag for an AdvancedParameter
//, ranked literal > contextual > inferred in precedence.
type ParameterSource string

const (
	SourceLiteral    ParameterSource = "literal"
	SourceContextual ParameterSource = "contextual"
	SourceInferred   ParameterSource = "inferred"
	SourcePrompted   ParameterSource = "prompted"
	SourceDefault    ParameterSource = "default"
)

// sourceRank gives literal > contextual > inferred precedence ordering;
// prompted/default are not compared by rank since they only apply when no
// value is present at all.
var sourceRank = map[ParameterSource]int{
	SourceLiteral:    3,
	SourceContextual: 2,
	SourceInferred:   1,
	SourcePrompted:   0,
	SourceDefault:    0,
}

// AdvancedParameter is a resolved or pending parameter value.
type AdvancedParameter struct {
	Name        string
	Value       any
	Source      ParameterSource
	Confidence  float64
	Required    bool
	Description string
}

// Pending reports whether this is a "ask the user" placeholder: required,
// no value, sourced as prompted.
func (p AdvancedParameter) Pending() bool {
	return p.Required && p.Value == nil && p.Source == SourcePrompted
}

// MergeParameters merges candidate parameter lists for the same name by
// source precedence (literal > contextual > inferred); prompted/default
// placeholders are only kept when no other source supplied a value.
func MergeParameters(candidates ...AdvancedParameter) []AdvancedParameter {
	byName := map[string]AdvancedParameter{}
	order := []string{}
	for _, c := range candidates {
		existing, ok := byName[c.Name]
		if !ok {
			byName[c.Name] = c
			order = append(order, c.Name)
			continue
		}
		if sourceRank[c.Source] > sourceRank[existing.Source] {
			byName[c.Name] = c
		}
	}
	out := make([]AdvancedParameter, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
