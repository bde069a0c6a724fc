package upgrade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplacer struct {
	replaced map[string]Item
	err      error
}

func (r *fakeReplacer) Replace(slot string, item Item) error {
	if r.err != nil {
		return r.err
	}
	if r.replaced == nil {
		r.replaced = map[string]Item{}
	}
	r.replaced[slot] = item
	return nil
}

func batterySlots(charges ...float64) []Slot {
	out := make([]Slot, len(charges))
	for i, c := range charges {
		name := string(rune('a' + i))
		out[i] = Slot{Name: name, Item: &Item{ID: name, Kind: "nuclear", Battery: &Battery{Charge: c, Capacity: 100}}}
	}
	return out
}

func TestBatteryHandlerCollects(t *testing.T) {
	hooks := &countingHooks{}
	b := NewBatteryHandler("nuclear", WithHooks(hooks))
	e := NewEngine(nil)
	require.NoError(t, e.Register(b, "test"))

	e.Scan(batterySlots(10, 20.5))
	assert.Equal(t, 30.5, b.TotalBatteryCharge())
	assert.Equal(t, 200.0, b.TotalBatteryCapacity())
	assert.Equal(t, 2, hooks.counted, "user hooks still fire")

	e.Scan(nil)
	assert.Equal(t, 0.0, b.TotalBatteryCharge())
	assert.Equal(t, 1, hooks.cleared)
}

func TestBatteryHandlerDrawPower(t *testing.T) {
	b := NewBatteryHandler("nuclear")
	e := NewEngine(nil)
	require.NoError(t, e.Register(b, "test"))
	s := batterySlots(0.1, 5)
	e.Scan(s)

	assert.Equal(t, 0.0, b.DrawPower(0.15, 0))
	assert.InDelta(t, 0.15, b.DrawPower(0.15, 10), 1e-12)
	assert.Equal(t, 0.0, s[0].Item.Battery.Charge)
	assert.InDelta(t, 4.95, s[1].Item.Battery.Charge, 1e-12)

	assert.InDelta(t, 0.02, b.DrawPower(0.15, 0.02), 1e-12)
}

func TestBatteryHandlerSwapsDepleted(t *testing.T) {
	b := NewBatteryHandler("nuclear")
	r := &fakeReplacer{}
	b.SwapDepleted("depleted", r, nil)
	e := NewEngine(nil)
	require.NoError(t, e.Register(b, "test"))
	e.Scan(batterySlots(0.05, 3))

	b.DrawPower(0.15, 10)

	require.Contains(t, r.replaced, "a")
	assert.Equal(t, TechType("depleted"), r.replaced["a"].Kind)
	assert.Equal(t, []float64{2.9}, roundAll(b.Charges()))

	r.err = errors.New("slot locked")
	b.DrawPower(5, 10)
	assert.Equal(t, []float64{0}, b.Charges(), "a failed swap keeps the battery")
}

func TestBatteryHandlerRechargeAndRestore(t *testing.T) {
	b := NewBatteryHandler("solar2")
	e := NewEngine(nil)
	require.NoError(t, e.Register(b, "test"))
	e.Scan(batterySlots(95, 50))

	assert.Equal(t, 10.0, b.Recharge(10))
	assert.Equal(t, []float64{100, 55}, b.Charges())

	b.RestoreCharges([]float64{12, 500, 7})
	assert.Equal(t, []float64{12, 100}, b.Charges())
}

func roundAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(int(x*1e6+0.5)) / 1e6
	}
	return out
}
