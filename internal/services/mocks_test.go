package services

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yoockh/cvstudio/internal/models"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Insert(ctx context.Context, rec *models.CVRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id string) (*models.CVRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*models.CVRecord)
	return rec, args.Error(1)
}

func (m *mockRecordRepo) ListByOwner(ctx context.Context, userID string, limit int) ([]models.CVRecord, error) {
	args := m.Called(ctx, userID, limit)
	recs, _ := args.Get(0).([]models.CVRecord)
	return recs, args.Error(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

type mockFormatter struct {
	mock.Mock
}

func (m *mockFormatter) Format(ctx context.Context, resumeText, ehsFormText string) (*models.FormattedCV, error) {
	args := m.Called(ctx, resumeText, ehsFormText)
	cv, _ := args.Get(0).(*models.FormattedCV)
	return cv, args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	args := m.Called(ctx, objectName, contentType)
	return args.String(0), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderPDF(ctx context.Context, cv models.FormattedCV) ([]byte, error) {
	args := m.Called(ctx, cv)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockRenderer) RenderPageImages(ctx context.Context, cv models.FormattedCV) ([][]byte, error) {
	args := m.Called(ctx, cv)
	b, _ := args.Get(0).([][]byte)
	return b, args.Error(1)
}

// mapCache is an in-memory cache.Cache that skips JSON round-trips.
type mapCache struct {
	data map[string]any
}

func newMapCache() *mapCache { return &mapCache{data: map[string]any{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *models.CVRecord:
		*d = *(v.(*models.CVRecord))
	case *[]CVSummary:
		*d = v.([]CVSummary)
	}
	return true, nil
}

func (c *mapCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.data[key] = val
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}
