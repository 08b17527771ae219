package broken

// Invoice refers to a type that does not exist.
//
//buildergen:generate
type Invoice struct {
	Number string
	Total  Money
}
