package wishlist

import "slices"

// State is a set of product ids. Insertion order is kept so rendering is stable.
type State struct {
	ProductIDs []int64 `json:"productIds"`
}

func InitialState() State {
	return State{ProductIDs: []int64{}}
}

// FromIDs builds a state from ids, dropping duplicates and keeping first occurrence.
func FromIDs(ids []int64) State {
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	return State{ProductIDs: out}
}

func (s State) Contains(productID int64) bool {
	return slices.Contains(s.ProductIDs, productID)
}

// Toggle adds productID when absent and removes it when present.
func (s State) Toggle(productID int64) State {
	if idx := slices.Index(s.ProductIDs, productID); idx >= 0 {
		return State{ProductIDs: slices.Delete(slices.Clone(s.ProductIDs), idx, idx+1)}
	}

	return State{ProductIDs: append(slices.Clone(s.ProductIDs), productID)}
}

func (s State) IDs() []int64 {
	if s.ProductIDs == nil {
		return []int64{}
	}

	return slices.Clone(s.ProductIDs)
}
