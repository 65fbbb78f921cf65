package portsmock

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/policy"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type NotificationGateway struct{ mock.Mock }

func (m *NotificationGateway) Send(ctx context.Context, userID kernel.UUID, msg ports.Message) error {
	args := m.Called(ctx, userID, msg)
	return args.Error(0)
}

type OperatorDirectory struct{ mock.Mock }

func (m *OperatorDirectory) ListOperators(ctx context.Context) ([]ports.Operator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.Operator), args.Error(1)
}

// StaticPolicy is a PolicyProvider returning a fixed policy, settable between calls.
type StaticPolicy struct {
	mu     sync.Mutex
	policy policy.Policy
}

func NewStaticPolicy(p policy.Policy) *StaticPolicy {
	return &StaticPolicy{policy: p}
}

func (s *StaticPolicy) Set(p policy.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

func (s *StaticPolicy) Current(context.Context) (policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy, nil
}

type PolicyProvider struct{ mock.Mock }

func (m *PolicyProvider) Current(ctx context.Context) (policy.Policy, error) {
	args := m.Called(ctx)
	return args.Get(0).(policy.Policy), args.Error(1)
}
