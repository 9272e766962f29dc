// Package transient walks the transient-for relation between client
// surfaces. Edges are supplied by the caller as lookup functions so the
// relation is always computed from current state and never cached.
package transient

// ParentFunc returns the surface id is transient for, if any.
type ParentFunc[T comparable] func(id T) (T, bool)

// ChildrenFunc returns the surfaces that are transient for id.
type ChildrenFunc[T comparable] func(id T) []T

// Root follows parent links from start to the top of the chain. If a cycle
// is found the walk stops and the node whose parent was already visited is
// returned as the root, with cycle set.
func Root[T comparable](start T, parent ParentFunc[T]) (root T, cycle bool) {
	visited := map[T]struct{}{start: {}}
	cur := start
	for {
		next, ok := parent(cur)
		if !ok {
			return cur, false
		}
		if _, seen := visited[next]; seen {
			return cur, true
		}
		visited[next] = struct{}{}
		cur = next
	}
}

// Walk visits every descendant of start depth-first, in the order children
// returns them. start itself is not visited. Each node is visited at most
// once even if the relation contains cycles. Returning false from visit
// skips that node's subtree.
func Walk[T comparable](start T, children ChildrenFunc[T], visit func(T) bool) {
	seen := map[T]struct{}{start: {}}
	var walk func(T)
	walk = func(id T) {
		for _, c := range children(id) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if visit(c) {
				walk(c)
			}
		}
	}
	walk(start)
}

// Descendants returns every descendant of start in Walk order.
func Descendants[T comparable](start T, children ChildrenFunc[T]) []T {
	var out []T
	Walk(start, children, func(id T) bool {
		out = append(out, id)
		return true
	})
	return out
}
