package domain

// Source is a container (case or collection) grouping the items it can
// drop. Trade-up outcomes are drawn from the sources of the inputs.
type Source struct {
	ID      string
	Type    string
	ItemIDs []string
}
