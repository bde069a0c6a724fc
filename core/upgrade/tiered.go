package upgrade

import "cmp"

// TieredGroup tracks a family of mutually ranked modules. Only the highest
// installed tier is effective.
type TieredGroup[T cmp.Ordered] struct {
	defaultValue T
	highest      T
	active       bool
	tiers        []*Handler
	values       map[*Handler]T
	hooks        Lifecycle
}

// NewTieredGroup creates a group reporting defaultValue when no tier is
// installed.
func NewTieredGroup[T cmp.Ordered](defaultValue T, hooks Lifecycle) *TieredGroup[T] {
	if hooks == nil {
		hooks = NopLifecycle{}
	}
	return &TieredGroup[T]{
		defaultValue: defaultValue,
		highest:      defaultValue,
		values:       make(map[*Handler]T),
		hooks:        hooks,
	}
}

// AddTier adds a member handler for kind worth value. Tiers must be added
// before the group is registered.
func (g *TieredGroup[T]) AddTier(kind TechType, value T, opts ...Option) *Handler {
	h := NewHandler(kind, opts...)
	h.group = g
	g.tiers = append(g.tiers, h)
	g.values[h] = value
	return h
}

// Kinds returns the tier kinds in insertion order.
func (g *TieredGroup[T]) Kinds() []TechType {
	out := make([]TechType, len(g.tiers))
	for i, h := range g.tiers {
		out[i] = h.kind
	}
	return out
}

// HighestValue returns the best installed tier value.
func (g *TieredGroup[T]) HighestValue() T { return g.highest }

// HasUpgrade reports whether any tier is installed.
func (g *TieredGroup[T]) HasUpgrade() bool { return g.active }

// Tiers returns the member handlers in insertion order.
func (g *TieredGroup[T]) Tiers() []*Handler { return g.tiers }

func (g *TieredGroup[T]) report(h *Handler) {
	v := g.values[h]
	if !g.active || v > g.highest {
		g.highest = v
	}
	g.active = true
}

func (g *TieredGroup[T]) begin() {
	held := g.active
	g.active = false
	g.highest = g.defaultValue
	if held {
		g.hooks.UpgradesCleared()
	}
}

func (g *TieredGroup[T]) end() {
	if g.active {
		g.hooks.UpgradesFinished()
	}
}

func (g *TieredGroup[T]) register(e *Engine) error {
	if err := e.check(g.Kinds()...); err != nil {
		return err
	}
	for _, h := range g.tiers {
		e.bind(h)
		e.participants = append(e.participants, h)
	}
	e.participants = append(e.participants, g)
	return nil
}
