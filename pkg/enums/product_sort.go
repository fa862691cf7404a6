package enums

import "fmt"

// ProductSort is a catalog ordering understood by the backend. Empty means backend default.
type ProductSort string

const (
	ProductSortDefault   ProductSort = ""
	ProductSortPriceAsc  ProductSort = "priceAsc"
	ProductSortPriceDesc ProductSort = "priceDesc"
	ProductSortNewest    ProductSort = "newest"
	ProductSortOldest    ProductSort = "oldest"
)

var validProductSorts = []ProductSort{
	ProductSortDefault,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortNewest,
	ProductSortOldest,
}

// String implements fmt.Stringer.
func (p ProductSort) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductSort.
func (p ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort.
func ParseProductSort(value string) (ProductSort, error) {
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
