package upgrade

// Lifecycle receives the scan events of one handler.
type Lifecycle interface {
	// UpgradesCleared fires at scan start when the handler held a count.
	UpgradesCleared()
	// UpgradeCounted fires for every matching occupied slot.
	UpgradeCounted(slot Slot)
	// UpgradesFinished fires at scan end when the count is non-zero.
	UpgradesFinished()
	// MaxCountReached fires the first time the count reaches MaxCount.
	MaxCountReached()
}

// NopLifecycle ignores every event.
type NopLifecycle struct{}

func (NopLifecycle) UpgradesCleared()    {}
func (NopLifecycle) UpgradeCounted(Slot) {}
func (NopLifecycle) UpgradesFinished()   {}
func (NopLifecycle) MaxCountReached()    {}

// Hooks adapts optional functions to Lifecycle.
type Hooks struct {
	Cleared    func()
	Counted    func(Slot)
	Finished   func()
	MaxReached func()
}

func (h Hooks) UpgradesCleared() {
	if h.Cleared != nil {
		h.Cleared()
	}
}

func (h Hooks) UpgradeCounted(s Slot) {
	if h.Counted != nil {
		h.Counted(s)
	}
}

func (h Hooks) UpgradesFinished() {
	if h.Finished != nil {
		h.Finished()
	}
}

func (h Hooks) MaxCountReached() {
	if h.MaxReached != nil {
		h.MaxReached()
	}
}
