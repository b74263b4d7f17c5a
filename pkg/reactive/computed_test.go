package reactive

import "testing"

func TestComputedLazy(t *testing.T) {
	rt := NewRuntime()
	state := rt.Wrap(map[string]any{"n": 1}, ModeMutable)

	calls := 0
	double := rt.Computed(func() any {
		calls++
		return state.Get("n").(int) * 2
	})

	if calls != 0 {
		t.Errorf("getter should not run before the first read, got %d", calls)
	}
	if double.Value() != 2 || double.Value() != 2 {
		t.Errorf("Value = %v, want 2", double.Value())
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	state.Set("n", 2)
	state.Set("n", 3)
	if calls != 1 {
		t.Errorf("writes should only mark dirty, got %d calls", calls)
	}
	if !double.Dirty() {
		t.Error("computed should be dirty after a write")
	}
	if double.Value() != 6 {
		t.Errorf("Value = %v, want 6", double.Value())
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestComputedNotifiesReaders(t *testing.T) {
	rt := NewRuntime()
	n := rt.Ref(1)
	double := rt.Computed(func() any { return n.Value().(int) * 2 })

	var seen []any
	rt.Effect(func() { seen = append(seen, double.Value()) })

	n.Set(5)
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("seen = %v, want [2 10]", seen)
	}
}

func TestComputedChain(t *testing.T) {
	rt := NewRuntime()
	n := rt.Ref(1)
	plusOne := rt.Computed(func() any { return n.Value().(int) + 1 })
	timesTen := rt.Computed(func() any { return plusOne.Value().(int) * 10 })

	if timesTen.Value() != 20 {
		t.Fatalf("Value = %v, want 20", timesTen.Value())
	}
	n.Set(2)
	if timesTen.Value() != 30 {
		t.Errorf("Value = %v, want 30", timesTen.Value())
	}
}

func TestComputedStop(t *testing.T) {
	rt := NewRuntime()
	n := rt.Ref(1)
	calls := 0
	c := rt.Computed(func() any {
		calls++
		return n.Value()
	})
	_ = c.Value()
	c.Stop()
	n.Set(2)
	if c.Dirty() || c.Value() != 1 || calls != 1 {
		t.Errorf("stopped computed should keep its last value")
	}
}

func TestComputedAndSourceReadTogether(t *testing.T) {
	tests := []struct {
		name          string
		computedFirst bool
	}{
		{"computed then source", true},
		{"source then computed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			state := rt.Wrap(map[string]any{"x": 1}, ModeMutable)
			double := rt.Computed(func() any { return state.Get("x").(int) * 2 })

			runs := 0
			var seen []any
			rt.Effect(func() {
				runs++
				if tt.computedFirst {
					seen = append(seen, double.Value(), state.Get("x"))
				} else {
					x := state.Get("x")
					seen = append(seen, double.Value(), x)
				}
			})

			state.Set("x", 2)
			if runs != 2 {
				t.Fatalf("runs = %d, want 2 (initial + one write)", runs)
			}
			if seen[2] != 4 || seen[3] != 2 {
				t.Errorf("seen = %v, want fresh [.. 4 2]", seen)
			}

			state.Set("x", 3)
			if runs != 3 {
				t.Errorf("runs = %d, want 3", runs)
			}
		})
	}
}

func TestComputedDiamondRunsReaderOnce(t *testing.T) {
	rt := NewRuntime()
	n := rt.Ref(1)
	plusOne := rt.Computed(func() any { return n.Value().(int) + 1 })
	timesTwo := rt.Computed(func() any { return n.Value().(int) * 2 })

	runs := 0
	var sum int
	rt.Effect(func() {
		runs++
		sum = plusOne.Value().(int) + timesTwo.Value().(int)
	})

	n.Set(5)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if sum != 16 {
		t.Errorf("sum = %d, want 16", sum)
	}
}
