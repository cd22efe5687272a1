package deployer

import (
	"errors"
	"fmt"
)

var (
	ErrDeploymentReverted   = errors.New("deployment transaction reverted")
	ErrNoCode               = errors.New("no code at deployed address")
	ErrUnresolvedDependency = errors.New("unresolved deployment dependency")
	ErrEmptyPlan            = errors.New("empty deployment plan")
	ErrNoDeployerKey        = errors.New("no deployer key")
)

// DependencyError is returned when a step references a label that has not been deployed yet
type DependencyError struct {
	Label string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnresolvedDependency, e.Label)
}

func (e *DependencyError) Unwrap() error {
	return ErrUnresolvedDependency
}

// StepError wraps the failure of a single plan step
type StepError struct {
	Index    int
	Label    string
	Contract string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, contract %s) failed: %v", e.Index+1, e.Label, e.Contract, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
