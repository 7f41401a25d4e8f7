package platform

import (
	"fmt"

	"github.com/malbeclabs/netcli/internal/matcher"
	"github.com/malbeclabs/netcli/internal/privilege"
)

// PagingHook is an on-open hook: the command to send, for a given privilege
// level name, to disable the device's "--More--" pager. Platforms with no
// paging concept return "" for every level.
type PagingHook func(levelName string) (cmd string, ok bool)

// PlatformDefinition is immutable per-vendor data (spec §3). Constructed
// once via New + fluent setters, then shared read-only across every Driver
// that selects it.
type PlatformDefinition struct {
	id                string
	levels            map[string]*PrivilegeLevel
	order             []string // deterministic iteration order
	defaultPrivilege  string
	failurePatterns   []*matcher.Pattern
	failureStrings    []string
	onOpenCommands    []string
	onCloseCommands   []string
	pagingHook        PagingHook
	pagerPromptExpr   string
	pagerPrompt       *matcher.Pattern
	behavior          VendorBehavior
	tailWindow        int

	graph *privilege.Graph

	configProfile *ConfigProfile
}

// New starts building a platform identified by id.
func New(id string) *PlatformDefinition {
	return &PlatformDefinition{
		id:     id,
		levels: make(map[string]*PrivilegeLevel),
	}
}

func (p *PlatformDefinition) WithPrivilege(l *PrivilegeLevel) *PlatformDefinition {
	if _, exists := p.levels[l.name]; !exists {
		p.order = append(p.order, l.name)
	}
	p.levels[l.name] = l
	return p
}

func (p *PlatformDefinition) WithDefaultPrivilege(name string) *PlatformDefinition {
	p.defaultPrivilege = name
	return p
}

func (p *PlatformDefinition) WithFailurePattern(expr string) *PlatformDefinition {
	p.failureStrings = append(p.failureStrings, expr)
	return p
}

func (p *PlatformDefinition) WithOnOpenCommand(cmd string) *PlatformDefinition {
	p.onOpenCommands = append(p.onOpenCommands, cmd)
	return p
}

func (p *PlatformDefinition) WithOnCloseCommand(cmd string) *PlatformDefinition {
	p.onCloseCommands = append(p.onCloseCommands, cmd)
	return p
}

func (p *PlatformDefinition) WithPagingHook(hook PagingHook) *PlatformDefinition {
	p.pagingHook = hook
	return p
}

// WithPagerPrompt installs the regex matching the vendor's mid-stream
// "--More--" style pager prompt. The Channel auto-responds to it with a
// space and strips it from the result (spec §8 boundary behavior); this is
// the fallback path for platforms where WithPagingHook's on-open
// disable-paging command didn't (or couldn't) take effect.
func (p *PlatformDefinition) WithPagerPrompt(expr string) *PlatformDefinition {
	p.pagerPromptExpr = expr
	return p
}

func (p *PlatformDefinition) WithBehavior(b VendorBehavior) *PlatformDefinition {
	p.behavior = b
	return p
}

func (p *PlatformDefinition) WithTailWindow(bytes int) *PlatformDefinition {
	p.tailWindow = bytes
	return p
}

// Build validates the definition (acyclic graph, known default privilege,
// compilable regexes) and compiles its derived structures. It must be called
// once after the fluent setters and before the platform is used by a Driver;
// built-in platform constructors call it each time they are invoked.
func (p *PlatformDefinition) Build() (*PlatformDefinition, error) {
	if p.id == "" {
		return nil, fmt.Errorf("netcli/platform: platform id is required")
	}
	if len(p.levels) == 0 {
		return nil, fmt.Errorf("netcli/platform %s: at least one privilege level is required", p.id)
	}
	if p.defaultPrivilege == "" {
		return nil, fmt.Errorf("netcli/platform %s: default privilege is required", p.id)
	}
	if _, ok := p.levels[p.defaultPrivilege]; !ok {
		return nil, fmt.Errorf("netcli/platform %s: default privilege %q is not a declared level", p.id, p.defaultPrivilege)
	}

	window := p.tailWindow
	if window <= 0 {
		window = matcher.DefaultWindow
	}
	p.tailWindow = window

	var nodes []privilege.Node
	for _, name := range p.order {
		l := p.levels[name]
		parent, hasParent := l.Parent()
		if name != p.defaultPrivilege && !hasParent {
			return nil, fmt.Errorf("netcli/platform %s: level %q has no parent and is not the default privilege", p.id, name)
		}
		nodes = append(nodes, privilege.Node{Name: name, Parent: parent, HasParent: hasParent})
		if _, err := l.CompilePrompt(window); err != nil {
			return nil, fmt.Errorf("netcli/platform %s: level %q prompt: %w", p.id, name, err)
		}
	}
	graph, err := privilege.New(nodes)
	if err != nil {
		return nil, fmt.Errorf("netcli/platform %s: %w", p.id, err)
	}
	p.graph = graph

	for _, expr := range p.failureStrings {
		pat, err := matcher.Compile(expr, 1<<20) // failure patterns scan the whole captured result, not a tail window
		if err != nil {
			return nil, fmt.Errorf("netcli/platform %s: failure pattern %q: %w", p.id, expr, err)
		}
		p.failurePatterns = append(p.failurePatterns, pat)
	}

	if p.behavior == nil {
		p.behavior = DefaultBehavior{}
	}

	if p.pagerPromptExpr != "" {
		pat, err := matcher.Compile(p.pagerPromptExpr, window)
		if err != nil {
			return nil, fmt.Errorf("netcli/platform %s: pager prompt: %w", p.id, err)
		}
		p.pagerPrompt = pat
	}

	return p, nil
}

// PagerPrompt returns the compiled pager-prompt pattern, if one was set.
func (p *PlatformDefinition) PagerPrompt() (*matcher.Pattern, bool) {
	return p.pagerPrompt, p.pagerPrompt != nil
}

func (p *PlatformDefinition) ID() string { return p.id }

func (p *PlatformDefinition) DefaultPrivilege() string { return p.defaultPrivilege }

func (p *PlatformDefinition) Level(name string) (*PrivilegeLevel, bool) {
	l, ok := p.levels[name]
	return l, ok
}

// Levels returns levels in deterministic declaration order.
func (p *PlatformDefinition) Levels() []*PrivilegeLevel {
	out := make([]*PrivilegeLevel, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.levels[name])
	}
	return out
}

func (p *PlatformDefinition) Graph() *privilege.Graph { return p.graph }

func (p *PlatformDefinition) TailWindow() int { return p.tailWindow }

func (p *PlatformDefinition) OnOpenCommands() []string  { return p.onOpenCommands }
func (p *PlatformDefinition) OnCloseCommands() []string { return p.onCloseCommands }

func (p *PlatformDefinition) Behavior() VendorBehavior { return p.behavior }

// PagingCommand returns the pager-disable command for levelName, if any.
func (p *PlatformDefinition) PagingCommand(levelName string) (string, bool) {
	if p.pagingHook == nil {
		return "", false
	}
	return p.pagingHook(levelName)
}

// FailureMatch scans raw against every compiled failure pattern and returns
// the first hit, in declaration order.
func (p *PlatformDefinition) FailureMatch(raw string) (string, bool) {
	b := []byte(raw)
	for i, pat := range p.failurePatterns {
		if matched, _ := pat.Match(b); matched {
			return p.failureStrings[i], true
		}
	}
	return "", false
}

// CompiledPrompts returns every level's compiled prompt pattern in
// declaration order, alongside the level name each belongs to. Used to
// synchronize to "some" prompt at open time and to re-detect the current
// level after a navigation timeout.
func (p *PlatformDefinition) CompiledPrompts() ([]string, []*matcher.Pattern, error) {
	names := make([]string, 0, len(p.order))
	pats := make([]*matcher.Pattern, 0, len(p.order))
	for _, name := range p.order {
		pat, err := p.levels[name].CompilePrompt(p.tailWindow)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		pats = append(pats, pat)
	}
	return names, pats, nil
}
