package reactive

// Dep is the set of effects subscribed to one (target, key) pair.
// Members keep their insertion order so triggers run in subscription order.
type Dep struct {
	subs  []*Effect
	index map[*Effect]struct{}
}

func newDep() *Dep {
	return &Dep{index: make(map[*Effect]struct{})}
}

// Len returns the number of subscribed effects.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Has reports whether e is subscribed.
func (d *Dep) Has(e *Effect) bool {
	_, ok := d.index[e]
	return ok
}

func (d *Dep) add(e *Effect) bool {
	if _, ok := d.index[e]; ok {
		return false
	}
	d.index[e] = struct{}{}
	d.subs = append(d.subs, e)
	return true
}

func (d *Dep) remove(e *Effect) {
	if _, ok := d.index[e]; !ok {
		return
	}
	delete(d.index, e)
	for i, s := range d.subs {
		if s == e {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies the member list so effects may re-subscribe while the
// trigger loop runs.
func (d *Dep) snapshot() []*Effect {
	out := make([]*Effect, len(d.subs))
	copy(out, d.subs)
	return out
}
