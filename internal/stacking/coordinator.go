package stacking

import "log/slog"

// Tree is the view of managed windows the coordinator needs. Enter and
// Leave implement the per-window operation guard: Enter returns false when
// the window is already part of an operation in progress.
type Tree[T comparable] interface {
	Root(w T) T
	Transients(w T) []T
	Iconic(w T) bool
	Enter(w T) bool
	Leave(w T)
	SetLayer(w T, layer int)
}

// Observer is told about stacking changes that clients may care about.
type Observer[T comparable] interface {
	Raised(w T)
	Lowered(w T)
}

// Coordinator applies stacking operations to a transient tree. Every
// operation resolves the root of w's transient tree, applies to the root,
// then to each non-iconic descendant.
type Coordinator[T comparable] struct {
	tree      Tree[T]
	layers    *Layers[T]
	menuLayer int
	observer  Observer[T]
	logger    *slog.Logger
}

// NewCoordinator creates a coordinator. Windows are never placed at or
// above menuLayer.
func NewCoordinator[T comparable](tree Tree[T], layers *Layers[T], menuLayer int, logger *slog.Logger) *Coordinator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator[T]{
		tree:      tree,
		layers:    layers,
		menuLayer: menuLayer,
		logger:    logger,
	}
}

// SetObserver registers o for raise/lower notifications.
func (c *Coordinator[T]) SetObserver(o Observer[T]) {
	c.observer = o
}

// Layers returns the underlying layer set.
func (c *Coordinator[T]) Layers() *Layers[T] { return c.layers }

// MenuLayer returns the reserved layer number.
func (c *Coordinator[T]) MenuLayer() int { return c.menuLayer }

// ClampLayer limits n to the layers a window may occupy.
func (c *Coordinator[T]) ClampLayer(n int) int {
	if n <= c.menuLayer {
		n = c.menuLayer + 1
	}
	return c.layers.Clamp(n)
}

// Add inserts a new window at the top of layer n.
func (c *Coordinator[T]) Add(w T, n int) int {
	n = c.ClampLayer(n)
	c.layers.Insert(w, n)
	c.layers.Commit()
	return n
}

// Remove drops w from the stack.
func (c *Coordinator[T]) Remove(w T) {
	if c.layers.Remove(w) {
		c.layers.Commit()
	}
}

// Raise brings w's transient tree to the top of its layers.
func (c *Coordinator[T]) Raise(w T) {
	c.propagate(c.tree.Root(w), func(x T) {
		c.layers.Raise(x)
		c.notifyRaised(x)
	})
	c.layers.Commit()
}

// Lower sends w's transient tree to the bottom of its layers. Transients
// are lowered after their parent so they stay stacked above it.
func (c *Coordinator[T]) Lower(w T) {
	root := c.tree.Root(w)
	var order []T
	c.propagate(root, func(x T) {
		order = append(order, x)
	})
	// lower children first so the root ends up lowest
	for i := len(order) - 1; i >= 0; i-- {
		c.layers.Lower(order[i])
		c.notifyLowered(order[i])
	}
	c.layers.Commit()
}

// TempRaise shows w's transient tree on top without changing the stored
// order and without notifying the observer.
func (c *Coordinator[T]) TempRaise(w T) {
	var lifted []T
	c.propagate(c.tree.Root(w), func(x T) {
		lifted = append(lifted, x)
	})
	c.layers.CommitLifted(lifted)
}

// RaiseLayer moves w's transient tree one layer up. Nothing happens when
// the root is already directly below the menu layer.
func (c *Coordinator[T]) RaiseLayer(w T) {
	root := c.tree.Root(w)
	cur, ok := c.layers.Layer(root)
	if !ok || cur <= c.menuLayer+1 {
		return
	}
	c.moveTree(root, c.ClampLayer(cur-1), true)
}

// LowerLayer moves w's transient tree one layer down.
func (c *Coordinator[T]) LowerLayer(w T) {
	root := c.tree.Root(w)
	cur, ok := c.layers.Layer(root)
	if !ok {
		return
	}
	c.moveTree(root, c.ClampLayer(cur+1), false)
}

// MoveToLayer puts w's transient tree on layer n, clamped below the menu
// layer. It returns the layer actually used.
func (c *Coordinator[T]) MoveToLayer(w T, n int) int {
	n = c.ClampLayer(n)
	c.moveTree(c.tree.Root(w), n, true)
	return n
}

func (c *Coordinator[T]) moveTree(root T, n int, raised bool) {
	c.logger.Debug("moving window tree", "layer", n)
	c.propagate(root, func(x T) {
		c.layers.MoveToLayer(x, n)
		// persist before descendants are visited in case one of them
		// leads back here
		c.tree.SetLayer(x, n)
		if raised {
			c.notifyRaised(x)
		} else {
			c.notifyLowered(x)
		}
	})
	c.layers.Commit()
}

// propagate applies op to w and its non-iconic descendants, each at most
// once per operation even when the tree is reachable along two paths.
func (c *Coordinator[T]) propagate(w T, op func(T)) {
	c.visit(w, op, make(map[T]struct{}))
}

func (c *Coordinator[T]) visit(w T, op func(T), seen map[T]struct{}) {
	if _, ok := seen[w]; ok {
		return
	}
	if !c.tree.Enter(w) {
		return
	}
	defer c.tree.Leave(w)
	seen[w] = struct{}{}

	op(w)
	for _, t := range c.tree.Transients(w) {
		if c.tree.Iconic(t) {
			continue
		}
		c.visit(t, op, seen)
	}
}

func (c *Coordinator[T]) notifyRaised(w T) {
	if c.observer != nil && !c.tree.Iconic(w) {
		c.observer.Raised(w)
	}
}

func (c *Coordinator[T]) notifyLowered(w T) {
	if c.observer != nil && !c.tree.Iconic(w) {
		c.observer.Lowered(w)
	}
}
