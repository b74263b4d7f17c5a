package vdom

import (
	"reflect"
	"sort"

	"github.com/vango-dev/sprout/pkg/reactive"
)

func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == "key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Renderer) mountProps(el Node, props Props) {
	for _, k := range sortedKeys(props) {
		if v := props[k]; v != nil {
			r.host.PatchProp(el, k, nil, v)
		}
	}
}

// patchProps sets changed and added props, then removes props absent from
// next by patching them to nil.
func (r *Renderer) patchProps(el Node, prev, next Props) {
	if sameProps(prev, next) {
		return
	}
	for _, k := range sortedKeys(next) {
		nv, pv := next[k], prev[k]
		if reactive.HasChanged(nv, pv) {
			r.host.PatchProp(el, k, pv, nv)
		}
	}
	for _, k := range sortedKeys(prev) {
		if _, ok := next[k]; !ok {
			r.host.PatchProp(el, k, prev[k], nil)
		}
	}
}

// sameProps reports whether both sides are the same map.
func sameProps(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
