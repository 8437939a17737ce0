package mode

import "math/rand"

// PopNRandomElements draws up to n elements from the pool without
// replacement, removing them from it. Drawing zero or fewer elements returns
// nil and leaves the pool untouched.
func PopNRandomElements[T any](pool *[]T, n int) []T {
	if n < 1 || len(*pool) == 0 {
		return nil
	}
	if n > len(*pool) {
		n = len(*pool)
	}
	drawn := make([]T, 0, n)
	for i := 0; i < n; i++ {
		element, _ := PopRandomElement(pool)
		drawn = append(drawn, element)
	}
	return drawn
}

// PopRandomElement draws one element from the pool, removing it. The second
// return is false when the pool is empty.
func PopRandomElement[T any](pool *[]T) (T, bool) {
	var zero T
	p := *pool
	if len(p) == 0 {
		return zero, false
	}
	i := rand.Intn(len(p))
	element := p[i]
	*pool = append(p[:i], p[i+1:]...)
	return element, true
}
