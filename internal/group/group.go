// Package group keeps the ordered set of client surfaces that share one
// frame as tabs, together with the surface currently shown.
package group

// Group is an ordered tab group with an active member. The zero value is an
// empty group.
type Group[T comparable] struct {
	members []T
	active  T
	has     bool
}

// New returns a group containing first as its active member.
func New[T comparable](first T) *Group[T] {
	g := &Group[T]{}
	g.Add(first)
	return g
}

// Len returns the number of members.
func (g *Group[T]) Len() int { return len(g.members) }

// Members returns a copy of the members in tab order.
func (g *Group[T]) Members() []T {
	out := make([]T, len(g.members))
	copy(out, g.members)
	return out
}

// Active returns the active member. ok is false for an empty group.
func (g *Group[T]) Active() (T, bool) {
	return g.active, g.has
}

// Contains reports whether id is a member.
func (g *Group[T]) Contains(id T) bool {
	return g.index(id) >= 0
}

func (g *Group[T]) index(id T) int {
	for i, m := range g.members {
		if m == id {
			return i
		}
	}
	return -1
}

// Add appends id. The first member added becomes active. Adding an
// existing member is a no-op and returns false.
func (g *Group[T]) Add(id T) bool {
	if g.Contains(id) {
		return false
	}
	g.members = append(g.members, id)
	if !g.has {
		g.active = id
		g.has = true
	}
	return true
}

// Remove drops id. If it was active the next member takes over, or the
// previous one when id was last in order.
func (g *Group[T]) Remove(id T) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	wasActive := g.has && g.active == id
	g.members = append(g.members[:i], g.members[i+1:]...)

	if !wasActive {
		return true
	}
	if len(g.members) == 0 {
		var zero T
		g.active = zero
		g.has = false
		return true
	}
	if i >= len(g.members) {
		i = len(g.members) - 1
	}
	g.active = g.members[i]
	return true
}

// SetActive makes id the active member. It returns false if id is not a
// member.
func (g *Group[T]) SetActive(id T) bool {
	if !g.Contains(id) {
		return false
	}
	g.active = id
	g.has = true
	return true
}

// Next advances the active pointer with wraparound. It returns false when
// there is nothing to cycle to. A stale active pointer is reset to the
// first member and also reported as not advanced.
func (g *Group[T]) Next() (T, bool) {
	return g.step(1)
}

// Prev moves the active pointer backwards with wraparound.
func (g *Group[T]) Prev() (T, bool) {
	return g.step(-1)
}

func (g *Group[T]) step(dir int) (T, bool) {
	if len(g.members) <= 1 {
		return g.active, false
	}
	i := g.index(g.active)
	if !g.has || i < 0 {
		g.active = g.members[0]
		g.has = true
		return g.active, false
	}
	n := len(g.members)
	g.active = g.members[(i+dir+n)%n]
	return g.active, true
}

// Splice moves every member of other to the end of g, keeping g's active
// member. other is left empty.
func (g *Group[T]) Splice(other *Group[T]) {
	for _, m := range other.members {
		g.Add(m)
	}
	other.members = nil
	var zero T
	other.active = zero
	other.has = false
}
