// Package memory implements all stores in memory. Nodes, policies and models
// come from the static inventory of the configuration.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
)

// Store is safe for concurrent use. Everything it returns is a copy.
type Store struct {
	lock     sync.RWMutex
	nodes    map[string]*vmodel.Node
	policies map[string]*policy.Policy
	models   map[string]policy.Model
	vmodels  map[string]*vmodel.VModel
}

var (
	_ store.NodeStore   = &Store{}
	_ store.PolicyStore = &Store{}
	_ store.ModelStore  = &Store{}
	_ store.VModelStore = &Store{}
)

// Option seeds a store
type Option func(*Store)

// WithNodes adds nodes to the store
func WithNodes(nodes ...*vmodel.Node) Option {
	return func(s *Store) {
		for _, n := range nodes {
			s.nodes[n.UUID] = cloneNode(n)
		}
	}
}

// WithPolicies adds policies to the store
func WithPolicies(policies ...*policy.Policy) Option {
	return func(s *Store) {
		for _, p := range policies {
			c := *p
			s.policies[p.UUID] = &c
		}
	}
}

// WithModels adds models to the store. Models are immutable and shared.
func WithModels(models ...policy.Model) Option {
	return func(s *Store) {
		for _, m := range models {
			s.models[m.UUID()] = m
		}
	}
}

// New creates a store
func New(opts ...Option) *Store {
	s := &Store{
		nodes:    make(map[string]*vmodel.Node),
		policies: make(map[string]*policy.Policy),
		models:   make(map[string]policy.Model),
		vmodels:  make(map[string]*vmodel.VModel),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneNode(n *vmodel.Node) *vmodel.Node {
	ret := *n
	if n.Attributes != nil {
		ret.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			ret.Attributes[k] = v
		}
	}
	if n.Tags != nil {
		ret.Tags = append([]string(nil), n.Tags...)
	}
	return &ret
}

func (s *Store) GetNode(_ context.Context, id string) (*vmodel.Node, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, store.NotFoundError("node", id)
	}
	return cloneNode(n), nil
}

// SetNode adds or replaces a node. The discovery of the boot agent uses it to
// track the last reported state.
func (s *Store) SetNode(n *vmodel.Node) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nodes[n.UUID] = cloneNode(n)
}

func (s *Store) GetPolicy(_ context.Context, id string) (*policy.Policy, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.policies[id]
	if !ok {
		return nil, store.NotFoundError("policy", id)
	}
	c := *p
	return &c, nil
}

func (s *Store) ListPolicies(_ context.Context) ([]*policy.Policy, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		c := *p
		ret = append(ret, &c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].UUID < ret[j].UUID })
	return ret, nil
}

func (s *Store) GetModel(_ context.Context, id string) (policy.Model, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	m, ok := s.models[id]
	if !ok {
		return nil, store.NotFoundError("model", id)
	}
	return m, nil
}

func (s *Store) Create(_ context.Context, vm *vmodel.VModel) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.vmodels[vm.UUID]; ok {
		return store.AlreadyExistsError("vmodel", vm.UUID)
	}
	s.vmodels[vm.UUID] = vm.Clone()
	return nil
}

func (s *Store) Save(_ context.Context, vm *vmodel.VModel) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.vmodels[vm.UUID]; !ok {
		return store.NotFoundError("vmodel", vm.UUID)
	}
	s.vmodels[vm.UUID] = vm.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*vmodel.VModel, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	vm, ok := s.vmodels[id]
	if !ok {
		return nil, store.NotFoundError("vmodel", id)
	}
	return vm.Clone(), nil
}

func (s *Store) List(_ context.Context) ([]*vmodel.VModel, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]*vmodel.VModel, 0, len(s.vmodels))
	for _, vm := range s.vmodels {
		ret = append(ret, vm.Clone())
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].UUID < ret[j].UUID })
	return ret, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.vmodels[id]; !ok {
		return store.NotFoundError("vmodel", id)
	}
	delete(s.vmodels, id)
	return nil
}
