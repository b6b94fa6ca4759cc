package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState      = errors.New("state outside grid bounds")
	ErrInvalidAction     = errors.New("invalid action")
	ErrEmptyCandidateSet = errors.New("no legal action ties the maximum value")
	ErrInvalidGridSize   = errors.New("invalid grid size")
	ErrUnreachableGoal   = errors.New("goal unreachable without crossing a hazard")
)

// WrapStateError adds the offending state to an error
func WrapStateError(s State, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("state %s: %w", s, err)
}

// StepError records where in training a fatal error occurred
type StepError struct {
	Episode int
	Step    int
	State   State
	Err     error
}

// NewStepError creates a new StepError
func NewStepError(episode, step int, s State, err error) *StepError {
	return &StepError{
		Episode: episode,
		Step:    step,
		State:   s,
		Err:     err,
	}
}

func (e *StepError) Error() string {
	return fmt.Sprintf("episode %d step %d at %s: %v", e.Episode, e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// WrapStepError attaches episode and step context to err. A nil err stays nil.
func WrapStepError(episode, step int, s State, err error) error {
	if err == nil {
		return nil
	}
	return NewStepError(episode, step, s, err)
}
