// Package mocks provides mock implementations of the commandhook interfaces for testing.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Runner is a mock type for the Runner type.
type Runner struct {
	mock.Mock
}

// NewRunner creates a Runner mock and registers expectation assertions on cleanup.
func NewRunner(t interface {
	mock.TestingT
	Cleanup(fn func())
},
) *Runner {
	m := &Runner{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Run provides a mock function with given fields: command, input.
func (_m *Runner) Run(command *types.Command, input []byte) types.Outcome {
	ret := _m.Called(command, input)

	var result0 types.Outcome
	if rf, ok := ret.Get(0).(func(*types.Command, []byte) types.Outcome); ok {
		result0 = rf(command, input)
	} else {
		result0 = ret.Get(0).(types.Outcome)
	}

	return result0
}
