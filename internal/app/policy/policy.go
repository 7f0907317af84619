// Package policy decides which player command ends a clip or answers the next button.
package policy

import "math/rand/v2"

// Input is the playback state a policy decides on.
type Input struct {
	Hold      bool
	Shuffle   bool
	ClipIndex int // -1 when the player has not confirmed a clip
	ClipCount int
	Rand      *rand.Rand
}

// Result represents the decision of a policy.
type Result struct {
	Decided bool
	Command string // empty when the decision is to do nothing
}

// Pass returns a result that leaves the decision to the next policy.
func Pass() Result {
	return Result{}
}

// Do returns a decision to send cmd.
func Do(cmd string) Result {
	return Result{Decided: true, Command: cmd}
}

// Nothing returns a decision to send no command.
func Nothing() Result {
	return Result{Decided: true}
}

// Policy is the interface for clip transition policies.
type Policy interface {
	// Name returns the policy name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Decide returns the decision for the given state.
	Decide(in Input) Result
}

// registry holds registered policy factories.
var registry = make(map[string]func() Policy)

// Register registers a policy factory.
func Register(name string, factory func() Policy) {
	registry[name] = factory
}

// GetRegistered returns all registered policy factories.
func GetRegistered() map[string]func() Policy {
	return registry
}
