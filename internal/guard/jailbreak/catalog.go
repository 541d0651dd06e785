package jailbreak

import "regexp"

// Category identifies a group of related jailbreak patterns. Every pattern
// in a category shares the category's severity weight.
type Category string

const (
	CategoryInstructionInjection Category = "instruction_injection"
	CategoryRoleplay             Category = "roleplay"
	CategoryHypothetical         Category = "hypothetical"
	CategoryDeveloperMode        Category = "developer_mode"
)

// rule is a single compiled pattern. The raw source text is kept verbatim
// for match descriptors.
type rule struct {
	raw string
	re  *regexp.Regexp
}

// categoryRules holds one category's ordered pattern list.
type categoryRules struct {
	category Category
	rules    []rule
}

// defaultCatalog returns the built-in pattern catalog. Order matters:
// matches are reported in catalog order and it must be stable across runs.
// Patterns are written lower-case and matched against lower-cased input.
func defaultCatalog() []categoryRules {
	return []categoryRules{
		{CategoryInstructionInjection, compile(
			`ignore.*previous.*instruction`,
			`forget.*everything.*above`,
			`new.*instruction`,
			`system.*message`,
		)},
		{CategoryRoleplay, compile(
			`pretend.*you.*are`,
			`act.*as.*if`,
			`roleplay.*as`,
			`imagine.*you.*are`,
		)},
		{CategoryHypothetical, compile(
			`in.*a.*world.*where`,
			`hypothetically`,
			`what.*if.*there.*were.*no.*rules`,
		)},
		{CategoryDeveloperMode, compile(
			`developer.*mode`,
			`debug.*mode`,
			`admin.*mode`,
		)},
	}
}

// compile builds the rule list for one category. A malformed pattern is a
// programming defect and panics at construction, never during a scan.
func compile(patterns ...string) []rule {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, rule{raw: p, re: regexp.MustCompile(p)})
	}
	return rules
}

// defaultWeights maps each category to a severity weight in [0, 1].
func defaultWeights() map[Category]float64 {
	return map[Category]float64{
		CategoryInstructionInjection: 0.9,
		CategoryRoleplay:             0.6,
		CategoryHypothetical:         0.4,
		CategoryDeveloperMode:        0.85,
	}
}

// fallbackWeight applies to categories absent from the weight table.
const fallbackWeight = 0.5
