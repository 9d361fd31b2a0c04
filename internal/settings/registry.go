package settings

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry loads and serves the embedded engine settings.
type Registry struct {
	engine *Engine
	mu     sync.RWMutex
}

// NewRegistry creates a settings registry from the embedded YAML files.
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	if err := r.loadEngineFile(); err != nil {
		return nil, fmt.Errorf("failed to load engine settings: %w", err)
	}

	return r, nil
}

// loadEngineFile reads and validates config/engine.yaml.
func (r *Registry) loadEngineFile() error {
	data, err := configFiles.ReadFile("config/engine.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config/engine.yaml: %w", err)
	}

	var engine Engine
	if err := yaml.Unmarshal(data, &engine); err != nil {
		return fmt.Errorf("failed to unmarshal config/engine.yaml: %w", err)
	}

	if engine.Visibility.ContentThreshold <= 0 {
		return fmt.Errorf("visibility.content_threshold must be positive, got %d", engine.Visibility.ContentThreshold)
	}
	if engine.Stream.ClientBuffer <= 0 {
		return fmt.Errorf("stream.client_buffer must be positive, got %d", engine.Stream.ClientBuffer)
	}

	r.mu.Lock()
	r.engine = &engine
	r.mu.Unlock()

	return nil
}

// Engine returns the loaded engine settings.
func (r *Registry) Engine() *Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.engine
}
