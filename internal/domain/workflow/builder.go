package workflow

import (
	"context"
	"fmt"
	"maps"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// StateMachineBuilder collects transition rules and stamps out machines
type StateMachineBuilder interface {
	// Configure returns the rule set for transitions leaving the given status
	Configure(status entity.ClaimStatus) StateConfiguration

	// Build creates an independent machine positioned at the given status
	Build(initial entity.ClaimStatus) StateMachine
}

// StateConfiguration registers transitions out of one status
type StateConfiguration interface {
	// Permit allows trigger to move the machine to the target status
	Permit(trigger Trigger, to entity.ClaimStatus) StateConfiguration
}

type rules map[Trigger]entity.ClaimStatus

type stateConfig struct {
	from  entity.ClaimStatus
	rules rules
}

type stateMachineBuilder struct {
	configs map[entity.ClaimStatus]*stateConfig
}

type stateMachine struct {
	current entity.ClaimStatus
	configs map[entity.ClaimStatus]*stateConfig
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{configs: make(map[entity.ClaimStatus]*stateConfig)}
}

// Configure panics on an unknown status; rules are wired at startup
func (b *stateMachineBuilder) Configure(status entity.ClaimStatus) StateConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", status))
	}
	cfg, ok := b.configs[status]
	if !ok {
		cfg = &stateConfig{from: status, rules: make(rules)}
		b.configs[status] = cfg
	}
	return cfg
}

// Build copies the rules so later Configure calls do not leak into built machines
func (b *stateMachineBuilder) Build(initial entity.ClaimStatus) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}
	configs := make(map[entity.ClaimStatus]*stateConfig, len(b.configs))
	for status, cfg := range b.configs {
		configs[status] = &stateConfig{from: status, rules: maps.Clone(cfg.rules)}
	}
	return &stateMachine{current: initial, configs: configs}
}

// Permit allows trigger to move the machine to the target status; a later
// Permit for the same trigger replaces the earlier one
func (c *stateConfig) Permit(trigger Trigger, to entity.ClaimStatus) StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	c.rules[trigger] = to
	return c
}

func (m *stateMachine) State() entity.ClaimStatus {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	cfg, ok := m.configs[m.current]
	if !ok {
		return false
	}
	_, ok = cfg.rules[trigger]
	return ok
}

func (m *stateMachine) Fire(_ context.Context, trigger Trigger) error {
	cfg, ok := m.configs[m.current]
	if !ok {
		return fmt.Errorf("%w: %s is terminal, cannot fire %s", ErrInvalidTransition, m.current, trigger)
	}
	to, ok := cfg.rules[trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	cfg, ok := m.configs[m.current]
	if !ok {
		return []Trigger{}
	}
	triggers := make([]Trigger, 0, len(cfg.rules))
	for trigger := range cfg.rules {
		triggers = append(triggers, trigger)
	}
	return triggers
}
