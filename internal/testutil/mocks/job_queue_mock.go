package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueLibraryScan() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueDeckImport(chapter int) error {
	args := m.Called(chapter)
	return args.Error(0)
}
