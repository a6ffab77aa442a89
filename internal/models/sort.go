package models

// SortKey selects the column the category table is ordered by.
type SortKey int

const (
	SortByRevenue SortKey = iota
	SortByCategory
	SortByListings
	SortByPrice
	SortByRating
)

// ParseSortKey maps a query-string value onto a SortKey. Unknown values
// fall back to revenue rather than erroring; the match is case-sensitive
// like the rest of the sort inputs.
func ParseSortKey(s string) SortKey {
	switch s {
	case "category":
		return SortByCategory
	case "listings":
		return SortByListings
	case "price":
		return SortByPrice
	case "rating":
		return SortByRating
	default:
		return SortByRevenue
	}
}

func (k SortKey) String() string {
	switch k {
	case SortByCategory:
		return "category"
	case SortByListings:
		return "listings"
	case SortByPrice:
		return "price"
	case SortByRating:
		return "rating"
	default:
		return "revenue"
	}
}

// SortDir is the ordering direction. Anything other than "desc" parses
// as ascending.
type SortDir int

const (
	SortAsc SortDir = iota
	SortDesc
)

func ParseSortDir(s string) SortDir {
	if s == "desc" {
		return SortDesc
	}
	return SortAsc
}

func (d SortDir) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}
