package scenario

import (
	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// listComponent renders the "state" prop as a keyed list. The container
// carries the row count in data-count.
func listComponent(container, item string) *vdom.Component {
	return &vdom.Component{
		Name: "KeyedList",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			state := props.Get("state").(*reactive.Proxy)
			count := ctx.Runtime().Computed(func() any {
				return len(state.Get("order").([]string))
			})
			return map[string]any{"state": state, "count": count}
		},
		Render: func(s *vdom.Scope) *vdom.VNode {
			state := s.Get("state").(*reactive.Proxy)
			count := s.Get("count").(*reactive.Computed)
			order := state.Get("order").([]string)
			labels := state.Get("labels").(*reactive.Proxy)

			rows := make([]any, len(order))
			for i, k := range order {
				rows[i] = vdom.H(item, vdom.Props{"key": k}, labelOf(labels, k))
			}
			return vdom.H(container, vdom.Props{"data-count": count.Value()}, rows)
		},
	}
}

func labelOf(labels *reactive.Proxy, key string) string {
	if s, ok := labels.Get(key).(string); ok {
		return s
	}
	return key
}
