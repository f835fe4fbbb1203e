package command

import (
	"cmp"
	"slices"
	"strings"
)

const (
	CategoryInformation = "🕯️ Information"
	CategoryEconomy     = "💰 Economy"
	CategorySettings    = "⚙️ Settings"
	CategoryAdmin       = "🛠️ Admin"
)

// CategoryWeights orders categories in help output. Unknown categories sort
// after the known ones.
var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryEconomy:     10,
	CategorySettings:    50,
	CategoryAdmin:       60,
}

// CategoryWeight returns the sort weight of a category.
func CategoryWeight(name string) int {
	if w, ok := CategoryWeights[name]; ok {
		return w
	}
	return 100
}

// SortCategories orders category names by weight, then by name.
func SortCategories(cats []string) {
	slices.SortFunc(cats, func(a, b string) int {
		if c := cmp.Compare(CategoryWeight(a), CategoryWeight(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
