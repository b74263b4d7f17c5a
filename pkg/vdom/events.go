package vdom

// On binds handler to event. The prop key is "on" followed by the
// capitalized event name, so On("add-item", fn) sets onAddItem.
func On(event string, handler any) EventHandler {
	return EventHandler{Event: toHandlerKey(camelize(event)), Handler: handler}
}

func OnClick(handler any) EventHandler { return On("click", handler) }
func OnInput(handler any) EventHandler { return On("input", handler) }
