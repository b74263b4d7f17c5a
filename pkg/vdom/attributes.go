package vdom

import (
	"sort"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute from one or more names.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Data sets a data-* attribute.
func Data(key string, value any) Attr { return attr("data-"+key, value) }

// Prop sets an arbitrary prop.
func Prop(key string, value any) Attr { return attr(key, value) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{} // Empty attr, will be ignored
}

// Classes merges class values. It accepts string, []string and
// map[string]bool; map entries are added in sorted order so the result is
// stable across renders.
func Classes(classes ...any) Attr {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					result = append(result, s)
				}
			}
		case map[string]bool:
			names := make([]string, 0, len(v))
			for class, include := range v {
				if include && class != "" {
					names = append(names, class)
				}
			}
			sort.Strings(names)
			result = append(result, names...)
		}
	}
	return attr("class", strings.Join(result, " "))
}
