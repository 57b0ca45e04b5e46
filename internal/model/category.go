package model

import "strings"

// CategoryType indicates whether a category applies to income or expense records.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income records.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense records.
	CategoryTypeExpense CategoryType = "expense"
)

// OtherCategory is assigned when no categorization layer produced a result.
const OtherCategory = "Other"

// ParseCategoryType converts user input into a CategoryType.
func ParseCategoryType(s string) (CategoryType, bool) {
	switch CategoryType(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryTypeExpense:
		return CategoryTypeExpense, true
	case CategoryTypeIncome:
		return CategoryTypeIncome, true
	}
	return "", false
}

// CategoryRule maps a category to the keyword patterns that identify it.
// Rules are static configuration and are never mutated after load.
type CategoryRule struct {
	Name     string       `yaml:"name" json:"name"`
	Type     CategoryType `yaml:"type" json:"type"`
	Patterns []string     `yaml:"patterns" json:"patterns"`
}

// AppliesTo reports whether the rule can categorize a record moving in direction d.
func (r CategoryRule) AppliesTo(d Direction) bool {
	if r.Type == "" {
		return true
	}
	return r.Type == d.CategoryType()
}
