package errors

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
	// Runtime Errors (E001-E039)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Node promoted re-entrantly",
		Detail:   "A node was materialized or hydrated from inside its own materialization. This usually means a node was appended to itself or to one of its own descendants.",
		DocURL:   "https://lattice.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Virtual description accessed after materialization",
		Detail:   "The node already has a live surface object. Check IsThunk before reading the virtual description.",
		DocURL:   "https://lattice.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Child group already occupied",
		Detail:   "InsertOnlyChild was called on a child group slot that already holds a node. Use UpsertOnlyChild to replace it.",
		DocURL:   "https://lattice.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Nodes belong to different trees",
		Detail:   "A structural operation mixed nodes created by different trees. Each tree is bound to one surface.",
		DocURL:   "https://lattice.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Child group index out of range",
		Detail:   "The index was not returned by NewGroup or AppendNewGroupSync on this parent.",
		DocURL:   "https://lattice.dev/docs/errors/E005",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Node is absent",
		Detail:   "An operation required a node but received the zero Node value.",
		DocURL:   "https://lattice.dev/docs/errors/E006",
	},

	// ============================================
	// Hydration Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: node kind differs",
		Detail:   "An element was expected where the existing markup has text, or the other way round. The markup was not produced from an equivalent tree.",
		DocURL:   "https://lattice.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: tag differs",
		Detail:   "The existing element has a different tag or namespace from the description.",
		DocURL:   "https://lattice.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: text content differs",
		Detail:   "The existing text does not start with the text the description expects.",
		DocURL:   "https://lattice.dev/docs/errors/E042",
	},
	"E043": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: missing node",
		Detail:   "The description has more children than the existing markup.",
		DocURL:   "https://lattice.dev/docs/errors/E043",
	},
	"E044": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: unexpected node",
		Detail:   "The existing markup has children that the description does not account for.",
		DocURL:   "https://lattice.dev/docs/errors/E044",
	},

	// ============================================
	// Surface Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategorySurface,
		Message:  "Surface operation failed",
		Detail:   "The rendering surface rejected an operation. The wrapped error has the surface's reason.",
		DocURL:   "https://lattice.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategorySurface,
		Message:  "No surface bound",
		Detail:   "The node needs a live surface object but its tree was created without a surface. Trees without a surface can only be serialized.",
		DocURL:   "https://lattice.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategorySurface,
		Message:  "Node is not a child",
		Detail:   "The reference node passed to a replace operation is not a child of the parent.",
		DocURL:   "https://lattice.dev/docs/errors/E062",
	},

	// ============================================
	// Document Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryDocument,
		Message:  "Document has no live root",
		Detail:   "Mounting and hydrating need a document backed by a live surface.",
		DocURL:   "https://lattice.dev/docs/errors/E080",
	},
	"E081": {
		Category: CategoryDocument,
		Message:  "Mount point not found",
		Detail:   "No element with the requested id exists in the document.",
		DocURL:   "https://lattice.dev/docs/errors/E081",
	},
	"E082": {
		Category: CategoryDocument,
		Message:  "Mount point is empty",
		Detail:   "Hydration needs the mount point to contain the server rendered markup.",
		DocURL:   "https://lattice.dev/docs/errors/E082",
	},

	// ============================================
	// Render Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryRender,
		Message:  "Void element has children",
		Detail:   "Void elements such as br, img and input cannot contain child nodes.",
		DocURL:   "https://lattice.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryRender,
		Message:  "Page render failed",
		Detail:   "A page function returned an error or its markup could not be written.",
		DocURL:   "https://lattice.dev/docs/errors/E101",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "lattice.json could not be read or parsed.",
		DocURL:   "https://lattice.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The port must be between 0 and 65535.",
		DocURL:   "https://lattice.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid log settings",
		Detail:   "log.format must be text or json and log.level one of debug, info, warn, error.",
		DocURL:   "https://lattice.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid export settings",
		Detail:   "An S3 export needs a bucket and a region.",
		DocURL:   "https://lattice.dev/docs/errors/E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Markup round trip differs",
		Detail:   "The hydrated tree serializes to different markup than the input.",
		DocURL:   "https://lattice.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "No lattice.json was found.",
		DocURL:   "https://lattice.dev/docs/errors/E141",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
