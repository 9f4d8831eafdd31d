package utils

import (
	"sort"
)

func SortYears(years []int, asc bool) []int {
	sort.Slice(years, func(i, j int) bool {
		if asc {
			return years[i] < years[j]
		}
		return years[i] > years[j]
	})
	return years
}

func GetSortedKeys[T any](m map[int]T, asc bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return SortYears(keys, asc)
}
