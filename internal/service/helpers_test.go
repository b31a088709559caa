package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository/mocks"
)

// mockDispatcher 是 NotificationDispatcher 的 mock
type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

// mockMailer 是 Mailer 的 mock
type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

// newTxStore 返回一个允许任意次 WithinTransaction 调用的 mock Store
func newTxStore() *mocks.Store {
	store := mocks.NewStore()
	store.On("WithinTransaction", mock.Anything).Return()
	return store
}
