package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/storage"
)

// MockResumeRepository is a mock implementation of ResumeRepository.
type MockResumeRepository struct {
	mock.Mock
}

func (m *MockResumeRepository) Create(ctx context.Context, resume *model.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *MockResumeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Resume), args.Error(1)
}

func (m *MockResumeRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Resume, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Resume), args.Error(1)
}

func (m *MockResumeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("resume", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["resume"][0]
}

func TestUploadService_UploadAndOpen(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	userID := uuid.New()
	candidate := &model.Candidate{ID: uuid.New(), UserID: userID}
	candidates := new(MockCandidateRepository)
	resumes := new(MockResumeRepository)
	candidates.On("FindByUserID", mock.Anything, userID).Return(candidate, nil)
	candidates.On("FindByID", mock.Anything, candidate.ID).Return(candidate, nil)

	var saved *model.Resume
	resumes.On("Create", mock.Anything, mock.AnythingOfType("*model.Resume")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Resume) }).
		Return(nil)

	svc := NewUploadService(candidates, resumes, new(MockRecruiterRepository), store, 1024)

	resume, err := svc.Upload(context.Background(), userID, fileHeader(t, "cv.PDF", []byte("%PDF-1.4 test")))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", resume.ContentType)
	assert.Equal(t, "cv.PDF", resume.OriginalName)
	assert.Contains(t, resume.StoragePath, candidate.ID.String())

	resumes.On("FindByID", mock.Anything, resume.ID).Return(saved, nil)
	_, rc, err := svc.Open(context.Background(), Actor{UserID: userID, Role: model.RoleCandidate}, resume.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))

	_, _, err = svc.Open(context.Background(), Actor{UserID: uuid.New(), Role: model.RoleCandidate}, resume.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestUploadService_UploadRejects(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewUploadService(new(MockCandidateRepository), new(MockResumeRepository), new(MockRecruiterRepository), store, 8)

	_, err = svc.Upload(context.Background(), uuid.New(), fileHeader(t, "cv.exe", []byte("x")))
	assert.ErrorIs(t, err, errors.ErrInvalidFileType)

	_, err = svc.Upload(context.Background(), uuid.New(), fileHeader(t, "cv.txt", []byte("more than eight bytes")))
	assert.ErrorIs(t, err, errors.ErrFileTooLarge)

	_, err = svc.Upload(context.Background(), uuid.New(), nil)
	var httpErr *errors.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}
