package policy

import (
	"github.com/cockroachdb/errors"
)

// Chain runs policies in order until one decides.
type Chain struct {
	policies []Policy
}

// NewChain creates a new, empty policy chain.
func NewChain() *Chain {
	return &Chain{
		policies: make([]Policy, 0),
	}
}

// Build creates a chain from registered policy names.
func Build(names []string) (*Chain, error) {
	c := NewChain()
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown policy %q", name)
		}
		c.Add(factory())
	}
	return c, nil
}

// Add adds a policy to the chain.
func (c *Chain) Add(p Policy) {
	c.policies = append(c.policies, p)
}

// Execute returns the first decision in the chain.
// A chain where no policy decides sends nothing.
func (c *Chain) Execute(in Input) Result {
	for _, p := range c.policies {
		if r := p.Decide(in); r.Decided {
			return r
		}
	}
	return Nothing()
}

// Policies returns all policies in the chain.
func (c *Chain) Policies() []Policy {
	return c.policies
}

// Names returns the names of the policies in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.policies))
	for i, p := range c.policies {
		names[i] = p.Name()
	}
	return names
}
