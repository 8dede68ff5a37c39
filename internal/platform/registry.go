package platform

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry holds the registered platform adapters
type Registry struct {
	adapters map[Platform]Adapter
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		adapters: make(map[Platform]Adapter),
		logger:   logger,
	}
}

func (r *Registry) Register(adapter Adapter) error {
	p := adapter.Platform()
	if !p.Valid() {
		return fmt.Errorf("adapter for unknown platform %q", p)
	}
	if _, exists := r.adapters[p]; exists {
		return fmt.Errorf("adapter for platform %s already registered", p)
	}

	r.adapters[p] = adapter
	r.logger.Info("Platform adapter registered", zap.String("platform", p.String()))
	return nil
}

func (r *Registry) Get(p Platform) (Adapter, error) {
	adapter, exists := r.adapters[p]
	if !exists {
		return nil, fmt.Errorf("adapter for platform %s not found", p)
	}
	return adapter, nil
}

func (r *Registry) Available() []Platform {
	var platforms []Platform
	for _, p := range All() {
		if _, ok := r.adapters[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}
