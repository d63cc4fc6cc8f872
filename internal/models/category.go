package models

// Category is a spending category. The set is closed: values outside it are
// rejected before they reach storage.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTravel         Category = "Travel"
	CategoryShopping       Category = "Shopping"
	CategoryNecessities    Category = "Necessities"
	CategoryEntertainment  Category = "Entertainment"
	CategoryTransportation Category = "Transportation"
	CategoryInsurance      Category = "Insurance"
	CategoryMedical        Category = "Medical"
	CategoryEducation      Category = "Education"
	CategoryGift           Category = "Gift"
	CategoryInvestments    Category = "Investments"
	CategoryOther          Category = "Other"
)

// DefaultCategory is assigned when a transaction is created without one.
const DefaultCategory = CategoryOther

var categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryShopping,
	CategoryNecessities,
	CategoryEntertainment,
	CategoryTransportation,
	CategoryInsurance,
	CategoryMedical,
	CategoryEducation,
	CategoryGift,
	CategoryInvestments,
	CategoryOther,
}

// CategoryChoice is the {value, label} pair exposed by the categories endpoint.
type CategoryChoice struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryChoices returns the {value, label} pairs in declaration order.
func CategoryChoices() []CategoryChoice {
	choices := make([]CategoryChoice, 0, len(categories))
	for _, c := range categories {
		choices = append(choices, CategoryChoice{Value: c, Label: c.Label()})
	}
	return choices
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display label of the category.
func (c Category) Label() string {
	return string(c)
}
