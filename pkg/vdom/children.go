package vdom

func (r *Renderer) patchChildren(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	prev, next := n1.ShapeFlag, n2.ShapeFlag

	switch {
	case next.HasTextChildren():
		if prev.HasArrayChildren() {
			r.unmountChildren(n1.Children, parent)
		}
		if !prev.HasTextChildren() || n1.Text != n2.Text {
			r.host.SetElementText(container, n2.Text)
		}

	case next.HasArrayChildren():
		if prev.HasArrayChildren() {
			if hasKeys(n1.Children) || hasKeys(n2.Children) {
				r.patchKeyedChildren(n1.Children, n2.Children, container, anchor, parent)
			} else {
				r.unmountChildren(n1.Children, parent)
				r.mountChildren(n2.Children, container, anchor, parent)
			}
			return
		}
		if prev.HasTextChildren() {
			r.host.SetElementText(container, "")
		}
		r.mountChildren(n2.Children, container, anchor, parent)

	default:
		if prev.HasArrayChildren() {
			r.unmountChildren(n1.Children, parent)
		} else if prev.HasTextChildren() {
			r.host.SetElementText(container, "")
		}
	}
}

func hasKeys(children []*VNode) bool {
	for _, c := range children {
		if c.Key != nil {
			return true
		}
	}
	return false
}

// patchKeyedChildren diffs two child lists: common prefix, common suffix,
// then a keyed middle window where only nodes off the longest increasing
// subsequence of old positions are moved.
func (r *Renderer) patchKeyedChildren(c1, c2 []*VNode, container, parentAnchor Node, parent *Instance) {
	i := 0
	l2 := len(c2)
	e1, e2 := len(c1)-1, l2-1

	// Prefix.
	for i <= e1 && i <= e2 {
		if !IsSameVNodeType(c1[i], c2[i]) {
			break
		}
		r.patch(c1[i], c2[i], container, nil, parent)
		i++
	}

	// Suffix.
	for i <= e1 && i <= e2 {
		if !IsSameVNodeType(c1[e1], c2[e2]) {
			break
		}
		r.patch(c1[e1], c2[e2], container, nil, parent)
		e1--
		e2--
	}

	// Only additions remain.
	if i > e1 {
		if i <= e2 {
			anchor := r.anchorAfter(c2, e2, parentAnchor)
			for ; i <= e2; i++ {
				r.patch(nil, c2[i], container, anchor, parent)
			}
		}
		return
	}

	// Only removals remain.
	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], parent, true)
		}
		return
	}

	s1, s2 := i, i
	keyToNewIndex := make(map[any]int)
	for j := s2; j <= e2; j++ {
		if c2[j].Key != nil {
			keyToNewIndex[c2[j].Key] = j
		}
	}

	toBePatched := e2 - s2 + 1
	patched := 0
	moved := false
	maxNewIndexSoFar := 0

	// newIndexToOldIndex[k] is 1 + the old index of c2[s2+k], or 0 when
	// c2[s2+k] is new.
	newIndexToOldIndex := make([]int, toBePatched)

	for j := s1; j <= e1; j++ {
		prev := c1[j]
		if patched >= toBePatched {
			r.unmount(prev, parent, true)
			continue
		}

		newIndex := -1
		if prev.Key != nil {
			if n, ok := keyToNewIndex[prev.Key]; ok {
				newIndex = n
			}
		} else {
			for k := s2; k <= e2; k++ {
				if newIndexToOldIndex[k-s2] == 0 && IsSameVNodeType(prev, c2[k]) {
					newIndex = k
					break
				}
			}
		}
		if newIndex < 0 {
			r.unmount(prev, parent, true)
			continue
		}

		newIndexToOldIndex[newIndex-s2] = j + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(prev, c2[newIndex], container, nil, parent)
		patched++
	}

	var stable []int
	if moved {
		stable = getSequence(newIndexToOldIndex)
	}
	k := len(stable) - 1
	for j := toBePatched - 1; j >= 0; j-- {
		idx := s2 + j
		next := c2[idx]
		anchor := r.anchorAfter(c2, idx, parentAnchor)
		switch {
		case newIndexToOldIndex[j] == 0:
			r.patch(nil, next, container, anchor, parent)
		case moved:
			if k < 0 || j != stable[k] {
				r.move(next, container, anchor)
			} else {
				k--
			}
		}
	}
}

// anchorAfter returns the first host node of children[idx+1], or
// fallback at the end of the list.
func (r *Renderer) anchorAfter(children []*VNode, idx int, fallback Node) Node {
	if idx+1 < len(children) {
		return r.firstHostNode(children[idx+1])
	}
	return fallback
}
