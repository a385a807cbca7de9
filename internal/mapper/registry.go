package mapper

import (
	"fmt"
	"sync"
)

type MapperRegistry struct {
	mappers map[string]EventMapper
	mu      sync.RWMutex
}

// NewMapperRegistry returns a registry with the GitHub and GitLab mappers
// registered.
func NewMapperRegistry() *MapperRegistry {
	r := &MapperRegistry{mappers: make(map[string]EventMapper)}
	r.Register("github", NewGitHubEventMapper())
	r.Register("gitlab", NewGitLabEventMapper())
	return r
}

func (r *MapperRegistry) Register(provider string, m EventMapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[provider] = m
}

func (r *MapperRegistry) Get(provider string) (EventMapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return m, nil
}

func (r *MapperRegistry) MustGet(provider string) EventMapper {
	m, err := r.Get(provider)
	if err != nil {
		panic(err)
	}
	return m
}

// Providers lists the registered provider names.
func (r *MapperRegistry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.mappers))
	for p := range r.mappers {
		out = append(out, p)
	}
	return out
}
