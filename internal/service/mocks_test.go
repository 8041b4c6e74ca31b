package service

import (
	"context"
	"io"

	"github.com/complegal/comprate/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockDocumentStore mocks domain.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Upload(ctx context.Context, r io.Reader, opts domain.UploadOptions) (domain.RemoteHandle, error) {
	args := m.Called(ctx, r, opts)
	return args.Get(0).(domain.RemoteHandle), args.Error(1)
}

// MockConversation mocks domain.Conversation
type MockConversation struct {
	mock.Mock
}

func (m *MockConversation) Send(ctx context.Context, text string, attachments []domain.RemoteHandle) (string, error) {
	args := m.Called(ctx, text, attachments)
	return args.String(0), args.Error(1)
}

// MockOpener mocks domain.ConversationOpener
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, model string) (domain.Conversation, error) {
	args := m.Called(ctx, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Conversation), args.Error(1)
}

// MockHistoryRepository mocks domain.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
