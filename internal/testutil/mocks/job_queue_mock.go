package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/conceptpulse/internal/deck"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueDeckImport(jobID string, d *deck.Deck) error {
	args := m.Called(jobID, d)
	return args.Error(0)
}
