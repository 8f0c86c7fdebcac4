package collections

// Contains reports whether elem is present in elements.
func Contains[T comparable](elem T, elements []T) bool {
	for _, e := range elements {
		if elem == e {
			return true
		}
	}
	return false
}

// Unique returns the elements with duplicates removed, keeping the first
// occurrence of every value. The input is not modified.
func Unique[T comparable](elements []T) []T {
	seen := make(map[T]struct{}, len(elements))
	unique := make([]T, 0, len(elements))
	for _, e := range elements {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}

// Without returns a new slice holding every element not present in remove.
func Without[T comparable](elements []T, remove ...T) []T {
	kept := make([]T, 0, len(elements))
	for _, e := range elements {
		if !Contains(e, remove) {
			kept = append(kept, e)
		}
	}
	return kept
}
