package catalog

import (
	"sort"

	"github.com/Impluse2/flowersss/internal/domain"
	"github.com/Impluse2/flowersss/internal/price"
)

// Paginate returns the window [page*pageSize, (page+1)*pageSize) of the
// snapshot and whether a further page exists. Out-of-range pages yield an
// empty window.
func Paginate(snap domain.Snapshot, page, pageSize int) (domain.Snapshot, bool) {
	if page < 0 || pageSize <= 0 {
		return nil, false
	}

	start := page * pageSize
	if start >= len(snap) {
		return nil, false
	}

	end := start + pageSize
	if end > len(snap) {
		end = len(snap)
	}
	return snap[start:end], end < len(snap)
}

// SortByName returns a copy of the snapshot ordered lexicographically by
// product name. The sort is stable, so equal names keep their snapshot order
// and repeated sorts are idempotent. The input is never mutated.
func SortByName(snap domain.Snapshot, ascending bool) domain.Snapshot {
	sorted := make(domain.Snapshot, len(snap))
	copy(sorted, snap)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Name > sorted[j].Name
	})
	return sorted
}

// SortByPrice returns a copy of the snapshot ordered by the numeric value of
// the price label. Stable; ties keep snapshot order; input untouched.
func SortByPrice(snap domain.Snapshot, ascending bool) domain.Snapshot {
	sorted := make(domain.Snapshot, len(snap))
	copy(sorted, snap)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := price.Extract(sorted[i].Price), price.Extract(sorted[j].Price)
		if ascending {
			return a < b
		}
		return a > b
	})
	return sorted
}
