package mocks

import (
	"context"
	"io"

	"mediafeed/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Publish(ctx context.Context, caller model.Identity, r io.Reader, originalFilename, contentType, caption string) (*model.Post, error) {
	args := m.Called(ctx, caller, r, originalFilename, contentType, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Feed(ctx context.Context, viewer model.Identity) ([]model.FeedEntry, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FeedEntry), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, caller model.Identity, postID string) error {
	args := m.Called(ctx, caller, postID)
	return args.Error(0)
}
