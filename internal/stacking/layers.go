// Package stacking orders managed windows into numbered layers and keeps
// transient windows stacked with the window they belong to.
package stacking

// Layers holds items in numbered layers, smaller numbers stacked higher.
// Within a layer items are kept top first.
type Layers[T comparable] struct {
	layers  [][]T
	where   map[T]int
	restack func(order []T)
}

// NewLayers creates count empty layers. restack receives the full
// top-to-bottom order whenever the caller commits a change; it may be nil.
func NewLayers[T comparable](count int, restack func(order []T)) *Layers[T] {
	if count < 1 {
		count = 1
	}
	return &Layers[T]{
		layers:  make([][]T, count),
		where:   make(map[T]int),
		restack: restack,
	}
}

// Count returns the number of layers.
func (l *Layers[T]) Count() int { return len(l.layers) }

// Clamp limits n to a valid layer number.
func (l *Layers[T]) Clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n >= len(l.layers) {
		return len(l.layers) - 1
	}
	return n
}

// Layer returns the layer holding item.
func (l *Layers[T]) Layer(item T) (int, bool) {
	n, ok := l.where[item]
	return n, ok
}

// Insert places item at the top of layer n. An item already present is
// moved.
func (l *Layers[T]) Insert(item T, n int) {
	l.Remove(item)
	n = l.Clamp(n)
	l.layers[n] = append([]T{item}, l.layers[n]...)
	l.where[item] = n
}

// Remove drops item from its layer.
func (l *Layers[T]) Remove(item T) bool {
	n, ok := l.where[item]
	if !ok {
		return false
	}
	l.layers[n] = without(l.layers[n], item)
	delete(l.where, item)
	return true
}

// Raise moves item to the top of its layer.
func (l *Layers[T]) Raise(item T) {
	n, ok := l.where[item]
	if !ok {
		return
	}
	l.layers[n] = append([]T{item}, without(l.layers[n], item)...)
}

// Lower moves item to the bottom of its layer.
func (l *Layers[T]) Lower(item T) {
	n, ok := l.where[item]
	if !ok {
		return
	}
	l.layers[n] = append(without(l.layers[n], item), item)
}

// MoveToLayer puts item on top of layer n.
func (l *Layers[T]) MoveToLayer(item T, n int) {
	if _, ok := l.where[item]; !ok {
		return
	}
	l.Insert(item, n)
}

// Order returns every item top to bottom.
func (l *Layers[T]) Order() []T {
	var out []T
	for _, layer := range l.layers {
		out = append(out, layer...)
	}
	return out
}

// Commit pushes the current order to the restack callback.
func (l *Layers[T]) Commit() {
	if l.restack != nil {
		l.restack(l.Order())
	}
}

// CommitLifted pushes an order in which each of lifted is shown at the top
// of its layer, later items above earlier ones, without changing the stored
// order.
func (l *Layers[T]) CommitLifted(lifted []T) {
	if l.restack == nil {
		return
	}
	tmp := make([][]T, len(l.layers))
	for i, layer := range l.layers {
		tmp[i] = append([]T(nil), layer...)
	}
	for _, item := range lifted {
		n, ok := l.where[item]
		if !ok {
			continue
		}
		tmp[n] = append([]T{item}, without(tmp[n], item)...)
	}
	var order []T
	for _, layer := range tmp {
		order = append(order, layer...)
	}
	l.restack(order)
}

func without[T comparable](s []T, item T) []T {
	out := s[:0:0]
	for _, v := range s {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}
