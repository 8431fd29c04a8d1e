// Package set provides set data structures.
package set

// Ordered is a set that remembers insertion order.
// Re-adding a value that's already present doesn't change its position.
//
// The zero value is ready to use, and a nil *Ordered may be read from.
// Ordered is not concurrency safe.
type Ordered[T comparable] struct {
	vals  []T
	index map[T]int
}

// NewOrdered creates an [Ordered] set with the given values, in order, ignoring duplicates.
func NewOrdered[T comparable](vals ...T) *Ordered[T] {
	o := &Ordered[T]{}
	for _, v := range vals {
		o.Add(v)
	}
	return o
}

// Add appends val if it's not already present, and reports whether it was added.
func (o *Ordered[T]) Add(val T) bool {
	if o.index == nil {
		o.index = map[T]int{}
	}
	if _, ok := o.index[val]; ok {
		return false
	}
	o.index[val] = len(o.vals)
	o.vals = append(o.vals, val)
	return true
}

// Remove deletes val, preserving the order of the remaining values, and reports whether it was present.
func (o *Ordered[T]) Remove(val T) bool {
	if o == nil {
		return false
	}
	pos, ok := o.index[val]
	if !ok {
		return false
	}
	delete(o.index, val)
	copy(o.vals[pos:], o.vals[pos+1:])
	var zero T
	o.vals[len(o.vals)-1] = zero
	o.vals = o.vals[:len(o.vals)-1]
	for i := pos; i < len(o.vals); i++ {
		o.index[o.vals[i]] = i
	}
	return true
}

func (o *Ordered[T]) Has(val T) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[val]
	return ok
}

func (o *Ordered[T]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.vals)
}

// Slice returns a copy of the values in insertion order, or nil if there are none.
// The copy may be used freely while the [Ordered] set is modified.
func (o *Ordered[T]) Slice() []T {
	if o.Len() == 0 {
		return nil
	}
	vals := make([]T, len(o.vals))
	copy(vals, o.vals)
	return vals
}
