package pcg

import (
	"fmt"

	"github.com/Faultbox/pcgextras/internal/scene"
)

// Component runs a node on behalf of an actor and keeps its last output.
// It satisfies scene.Generator.
type Component struct {
	owner scene.Actor
	node  Node
	Seed  int32

	output      *Output
	generations int
}

// Attach creates a component for node and registers it on owner.
func Attach(owner scene.Actor, node Node) *Component {
	c := &Component{owner: owner, node: node, Seed: 42}
	owner.ActorBase().AddGenerator(c)
	return c
}

// Generate runs the node, replacing the previous output.
func (c *Component) Generate() error {
	b := c.owner.ActorBase()
	out, err := c.node.Execute(&Context{Scene: b.Scene(), Source: c.owner, Seed: c.Seed})
	if err != nil {
		return fmt.Errorf("generating for %s: %w", b.Name, err)
	}
	c.output = &out
	c.generations++
	return nil
}

// Owner returns the actor the component generates for.
func (c *Component) Owner() scene.Actor { return c.owner }

// Cleanup drops the generated output.
func (c *Component) Cleanup() {
	c.output = nil
}

// Output returns the last generated output, if any.
func (c *Component) Output() (Output, bool) {
	if c.output == nil {
		return Output{}, false
	}
	return *c.output, true
}

// Generations counts successful Generate calls.
func (c *Component) Generations() int { return c.generations }
