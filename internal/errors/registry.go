package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryRuntime,
		Message:  "Write to readonly state ignored",
		Detail:   "A Set or Delete was issued through a readonly or shallow-readonly proxy. The write is dropped and the value is unchanged.",
		DocURL:   "https://sprout.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryRuntime,
		Message:  "Value cannot be made reactive",
		Detail:   "Only map[string]any objects can be wrapped. The value is returned unchanged and reads of it are not tracked.",
		DocURL:   "https://sprout.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Inject key not provided",
		Detail:   "No ancestor component provided a value for the requested key and no default was given.",
		DocURL:   "https://sprout.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Component has no render function",
		Detail:   "A component descriptor must set Render. The component renders nothing.",
		DocURL:   "https://sprout.dev/docs/errors/E103",
	},
	"E110": {
		Category: CategoryRuntime,
		Message:  "Task panicked on the event loop",
		Detail:   "A dispatched task or a job in the flush panicked. The loop recovered and continues with the next task.",
		DocURL:   "https://sprout.dev/docs/errors/E110",
	},
	"E111": {
		Category: CategoryRuntime,
		Message:  "Event loop closed",
		Detail:   "A task was dispatched after the loop stopped running.",
		DocURL:   "https://sprout.dev/docs/errors/E111",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "sprout.json or sprout.toml could not be parsed.",
		DocURL:   "https://sprout.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field has a value outside its allowed range.",
		DocURL:   "https://sprout.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json or .toml.",
		DocURL:   "https://sprout.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "Neither sprout.json nor sprout.toml exists in the directory.",
		DocURL:   "https://sprout.dev/docs/errors/E123",
	},

	// ============================================
	// Scenario Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryScenario,
		Message:  "Invalid scenario file",
		Detail:   "The scenario YAML could not be parsed.",
		DocURL:   "https://sprout.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryScenario,
		Message:  "Scenario has no steps",
		Detail:   "A scenario needs an initial list and at least one step.",
		DocURL:   "https://sprout.dev/docs/errors/E141",
	},
	"E142": {
		Category: CategoryScenario,
		Message:  "Duplicate key in scenario list",
		Detail:   "Keys inside one list must be unique.",
		DocURL:   "https://sprout.dev/docs/errors/E142",
	},
	"E150": {
		Category: CategoryScenario,
		Message:  "Trace archive write failed",
		Detail:   "The replay trace could not be stored.",
		DocURL:   "https://sprout.dev/docs/errors/E150",
	},
	"E151": {
		Category: CategoryScenario,
		Message:  "Trace not found",
		Detail:   "No stored trace exists with the requested id.",
		DocURL:   "https://sprout.dev/docs/errors/E151",
	},

	// ============================================
	// CLI Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command requires an argument that was not given.",
		DocURL:   "https://sprout.dev/docs/errors/E160",
	},
	"E161": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The devtools server stopped with an error.",
		DocURL:   "https://sprout.dev/docs/errors/E161",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
