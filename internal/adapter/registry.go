package adapter

import (
	"fmt"
	"sort"

	"github.com/foundme/foundme/internal/model"
)

// ErrUnknownTool is returned when a tool name has no registered adapter.
var ErrUnknownTool = fmt.Errorf("adapter: unknown tool")

// Registry holds the configured adapters keyed by tool name and resolves
// which tools serve a search kind.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own name. Re-registering a name
// replaces the previous adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return a, nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toolsByCategory maps an identifier category to the deep sweep performed
// for a full profile.
var toolsByCategory = map[model.TargetCategory][]string{
	model.TargetUsername: {"sherlock", "maigret", "docmeta"},
	model.TargetEmail:    {"holehe", "h8mail", "theharvester", "docmeta"},
	model.TargetPhone:    {"phoneinfoga"},
}

// toolsByKind maps the focused search kinds to their tool sets. Full
// profile searches resolve per identifier category instead.
var toolsByKind = map[model.SearchKind][]string{
	model.SearchUsername: {"sherlock", "maigret"},
	model.SearchEmail:    {"holehe", "h8mail", "theharvester"},
	model.SearchPhone:    {"phoneinfoga"},
}

// ToolsFor resolves the tool names that serve one identifier within a
// search of the given kind. Unknown kinds resolve to nil; the orchestrator
// validates kinds before resolution, so nil here means a programming error
// upstream rather than user input.
func ToolsFor(kind model.SearchKind, category model.TargetCategory) []string {
	if kind == model.SearchFullProfile {
		return toolsByCategory[category]
	}
	return toolsByKind[kind]
}

// Resolve returns the registered adapters serving one identifier within a
// search of the given kind. Tool names without a registered adapter are
// skipped; a deployment that configures no breach index simply runs
// without breach lookups.
func (r *Registry) Resolve(kind model.SearchKind, category model.TargetCategory) []Adapter {
	names := ToolsFor(kind, category)
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		if a, ok := r.adapters[name]; ok {
			adapters = append(adapters, a)
		}
	}
	return adapters
}
