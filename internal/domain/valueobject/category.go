package valueobject

import "fmt"

// Category classifies the lender of a contract.
type Category struct {
	value string
}

const (
	categoryPrivate   = "Privat"
	categorySyndicate = "Syndikat"
	categoryThird     = "Dritte"
)

var (
	CategoryPrivate   = Category{value: categoryPrivate}
	CategorySyndicate = Category{value: categorySyndicate}
	CategoryThird     = Category{value: categoryThird}
)

var validCategories = map[string]Category{
	categoryPrivate:   CategoryPrivate,
	categorySyndicate: CategorySyndicate,
	categoryThird:     CategoryThird,
}

// NewCategory creates a Category from a string, validating it is a known category.
func NewCategory(s string) (Category, error) {
	c, ok := validCategories[s]
	if !ok {
		return Category{}, fmt.Errorf("invalid contract category: %q", s)
	}
	return c, nil
}

func (c Category) String() string {
	return c.value
}

// IsZero returns true if the Category has not been set.
func (c Category) IsZero() bool {
	return c.value == ""
}
