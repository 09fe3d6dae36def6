package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of oracle.Client
type Client struct {
	mock.Mock
}

func (m *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
