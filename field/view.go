package field

// View is a read-only window onto one field buffer.
// A view taken before a swap keeps pointing at the same buffer, which the
// next frame overwrites; consumers that need a stable copy use CopyInto.
type View[T any] struct {
	data []T
	side int
}

// Len returns the number of texels.
func (v View[T]) Len() int { return len(v.data) }

// Side returns the grid side N.
func (v View[T]) Side() int { return v.side }

// Index returns the texel at flat index i.
func (v View[T]) Index(i int) T { return v.data[i] }

// At returns the texel at grid coordinate (x, y).
func (v View[T]) At(x, y int) T { return v.data[y*v.side+x] }

// CopyInto copies the field into dst, growing it if needed, and returns it.
func (v View[T]) CopyInto(dst []T) []T {
	if cap(dst) < len(v.data) {
		dst = make([]T, len(v.data))
	}
	dst = dst[:len(v.data)]
	copy(dst, v.data)
	return dst
}

// All iterates over index/texel pairs.
func (v View[T]) All(yield func(int, T) bool) {
	for i, t := range v.data {
		if !yield(i, t) {
			return
		}
	}
}
