package media

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, data []byte, mimeType string) (Upload, error) {
	args := m.Called(ctx, data, mimeType)
	return args.Get(0).(Upload), args.Error(1)
}
