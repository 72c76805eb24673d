package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"jarvis-ai-be/internal/pkg/logger"
)

const dispatchSeparator = "\n\n---\n\n"

// Result is one protected generator run.
type Result struct {
	Name    string
	Section *Section
	Err     error
}

// Registry maps categories to generators and runs them so that one failing
// generator never takes the rest of the answer down.
type Registry struct {
	categories map[string][]Generator
	byName     map[string]Generator
	logger     logger.ILogger
}

func NewRegistry(logger logger.ILogger) *Registry {
	return &Registry{
		categories: make(map[string][]Generator),
		byName:     make(map[string]Generator),
		logger:     logger,
	}
}

// Register appends generators to a category. A generator may serve several categories.
func (r *Registry) Register(category string, gens ...Generator) {
	for _, g := range gens {
		r.categories[category] = append(r.categories[category], g)
		r.byName[g.Name()] = g
	}
}

// Add registers generators reachable by name only, outside any category.
func (r *Registry) Add(gens ...Generator) {
	for _, g := range gens {
		r.byName[g.Name()] = g
	}
}

func (r *Registry) Get(name string) (Generator, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// Names lists every generator reachable by name, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	return out
}

// Dispatch runs the generators of each category in order, honouring Matchers
// and running a generator shared by several categories only once.
func (r *Registry) Dispatch(ctx context.Context, categories []string, req Request) string {
	seen := make(map[string]bool)
	var parts []string

	for _, cat := range categories {
		gens, ok := r.categories[cat]
		if !ok {
			r.logger.Warn("REPORT", "Unknown report category", map[string]interface{}{"category": cat})
			continue
		}
		for _, g := range gens {
			if seen[g.Name()] {
				continue
			}
			seen[g.Name()] = true

			if m, ok := g.(Matcher); ok && !m.Applies(req.Message) {
				continue
			}

			res := r.run(ctx, g, req)
			if body := strings.TrimSpace(res.Section.String()); body != "" {
				parts = append(parts, body)
			}
		}
	}
	return strings.Join(parts, dispatchSeparator)
}

// Collect runs the named generators unconditionally, in order.
func (r *Registry) Collect(ctx context.Context, names []string, req Request) []Result {
	out := make([]Result, 0, len(names))
	for _, name := range names {
		g, ok := r.byName[name]
		if !ok {
			err := fmt.Errorf("generator not registered")
			out = append(out, Result{Name: name, Err: err, Section: errorSection(name, err)})
			continue
		}
		out = append(out, r.run(ctx, g, req))
	}
	return out
}

func (r *Registry) run(ctx context.Context, g Generator, req Request) (res Result) {
	res.Name = g.Name()
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
			res.Section = errorSection(res.Name, res.Err)
			r.logger.Error("REPORT", "Report generator panicked", map[string]interface{}{
				"generator": res.Name,
				"error":     res.Err.Error(),
			})
		}
	}()

	sec, err := g.Generate(ctx, req)
	if err != nil {
		r.logger.Error("REPORT", "Report generator failed", map[string]interface{}{
			"generator": res.Name,
			"error":     err.Error(),
		})
		res.Err = err
		res.Section = errorSection(res.Name, err)
		return res
	}
	res.Section = sec
	return res
}

func errorSection(name string, err error) *Section {
	return &Section{Body: fmt.Sprintf("Error: %s: %v", name, err)}
}
