package upgrade

// TechType identifies the kind of an installed item.
type TechType string

// Battery is the energy cell carried by some modules.
type Battery struct {
	Charge   float64 `json:"charge" yaml:"charge"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// Item is one installed module.
type Item struct {
	ID      string   `json:"id" yaml:"id"`
	Kind    TechType `json:"kind" yaml:"kind"`
	Battery *Battery `json:"battery,omitempty" yaml:"battery,omitempty"`
}

// Slot is one equipment slot. Item is nil when the slot is empty.
type Slot struct {
	Name string `json:"name" yaml:"name"`
	Item *Item  `json:"item,omitempty" yaml:"item,omitempty"`
}

// Occupied reports whether an item is installed.
func (s Slot) Occupied() bool { return s.Item != nil }

// SlotReplacer swaps the item installed in a slot.
type SlotReplacer interface {
	Replace(slot string, item Item) error
}
