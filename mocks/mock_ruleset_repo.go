package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"birvalid/internal/domain"
)

// MockRuleSetRepo is a mock implementation of port.RuleSetRepository.
type MockRuleSetRepo struct {
	mock.Mock
}

func (m *MockRuleSetRepo) Get(ctx context.Context, id string) (*domain.RuleSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RuleSet), args.Error(1)
}

func (m *MockRuleSetRepo) List(ctx context.Context) ([]domain.RuleSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RuleSet), args.Error(1)
}

func (m *MockRuleSetRepo) Create(ctx context.Context, set *domain.RuleSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockRuleSetRepo) Update(ctx context.Context, set *domain.RuleSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockRuleSetRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
