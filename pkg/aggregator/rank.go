package aggregator

import "sort"

// RankEntities returns a copy of entities sorted by sortKeyFn descending with ties broken
// by idFn ascending, truncated to limit. limit <= 0 keeps every entity.
func RankEntities[T any](entities []T, idFn func(T) string, sortKeyFn func(T) float64, limit int) []T {
	if idFn == nil || sortKeyFn == nil {
		panic("aggregator: RankEntities requires id and sort key functions")
	}
	ranked := make([]T, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		ki, kj := sortKeyFn(ranked[i]), sortKeyFn(ranked[j])
		if ki == kj {
			return idFn(ranked[i]) < idFn(ranked[j])
		}
		return ki > kj
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
