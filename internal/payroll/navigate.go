package payroll

type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// Adjacency is the neighbourhood of the current week or year as reported by
// the store. A nil neighbour marks a boundary.
type Adjacency[T comparable] struct {
	Current T
	Next    *T
	Prev    *T
}

func navigate[T comparable](dir Direction, adj Adjacency[T]) *T {
	var target *T
	switch dir {
	case Next:
		target = adj.Next
	case Prev:
		target = adj.Prev
	default:
		return nil
	}
	if target == nil {
		return nil
	}
	v := *target
	return &v
}

// NavigateWeek returns the neighbouring week id or nil at a boundary.
func NavigateWeek(dir Direction, adj Adjacency[uint]) *uint {
	return navigate(dir, adj)
}

// NavigateYear returns the neighbouring year or nil at a boundary.
func NavigateYear(dir Direction, adj Adjacency[int]) *int {
	return navigate(dir, adj)
}
