package experiment

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/san-kum/animattach/internal/config"
	"github.com/san-kum/animattach/internal/dynamo"
	"github.com/san-kum/animattach/internal/integrators"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/scene"
)

//go:embed scenes/*.yaml
var builtin embed.FS

// Registry maps built-in scene names to their YAML sources.
type Registry struct {
	scenes map[string][]byte
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string][]byte)}

	entries, _ := builtin.ReadDir("scenes")
	for _, e := range entries {
		data, err := builtin.ReadFile(path.Join("scenes", e.Name()))
		if err != nil {
			continue
		}
		r.scenes[strings.TrimSuffix(e.Name(), ".yaml")] = data
	}
	return r
}

// GetScene builds a fresh copy of the named scene; every call returns an
// independent scene graph.
func (r *Registry) GetScene(name string) (*scene.Scene, error) {
	data, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return scene.Parse(data)
}

func (r *Registry) HasScene(name string) bool {
	_, ok := r.scenes[name]
	return ok
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description line of the named scene.
func (r *Registry) Describe(name string) string {
	s, err := r.GetScene(name)
	if err != nil {
		return ""
	}
	return s.Description
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []metrics.Metric {
	return metrics.Default(cfg.SettleTol, cfg.MaximumForce, cfg.PositionSpring)
}
