package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
	"recruitflow/internal/storage"
)

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// UploadService stores candidates' resume files.
type UploadService interface {
	Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*model.Resume, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Resume, error)
	// Open returns the metadata and content of a resume the actor may read. The caller closes the reader.
	Open(ctx context.Context, actor Actor, resumeID uuid.UUID) (*model.Resume, io.ReadCloser, error)
	Delete(ctx context.Context, userID uuid.UUID, resumeID uuid.UUID) error
}

type uploadService struct {
	candidates  repository.CandidateRepository
	resumes     repository.ResumeRepository
	store       storage.Storage
	access      accessChecker
	maxFileSize int64
}

// NewUploadService creates an upload service. Files larger than maxFileSize bytes are rejected.
func NewUploadService(
	candidates repository.CandidateRepository,
	resumes repository.ResumeRepository,
	recruiters repository.RecruiterRepository,
	store storage.Storage,
	maxFileSize int64,
) UploadService {
	return &uploadService{
		candidates:  candidates,
		resumes:     resumes,
		store:       store,
		access:      accessChecker{recruiters: recruiters},
		maxFileSize: maxFileSize,
	}
}

func (s *uploadService) Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*model.Resume, error) {
	if file == nil {
		return nil, errors.Validation("resume file is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return nil, errors.ErrInvalidFileType
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, errors.ErrFileTooLarge
	}

	candidate, err := s.candidates.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	resume := &model.Resume{
		ID:           uuid.New(),
		CandidateID:  candidate.ID,
		OriginalName: filepath.Base(file.Filename),
		ContentType:  contentType,
		Size:         file.Size,
	}
	resume.StoragePath = fmt.Sprintf("resumes/%s/%s%s", candidate.ID, resume.ID, ext)

	var reader io.Reader = src
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize)
	}
	if err := s.store.Save(ctx, resume.StoragePath, reader, contentType); err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	if err := s.resumes.Create(ctx, resume); err != nil {
		if delErr := s.store.Delete(ctx, resume.StoragePath); delErr != nil {
			logger.WithError(delErr).Warn("failed to remove orphaned resume file", "path", resume.StoragePath)
		}
		return nil, fmt.Errorf("save resume: %w", err)
	}
	return resume, nil
}

func (s *uploadService) List(ctx context.Context, userID uuid.UUID) ([]model.Resume, error) {
	candidate, err := s.candidates.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	resumes, err := s.resumes.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	if resumes == nil {
		resumes = []model.Resume{}
	}
	return resumes, nil
}

func (s *uploadService) Open(ctx context.Context, actor Actor, resumeID uuid.UUID) (*model.Resume, io.ReadCloser, error) {
	resume, err := s.resumes.FindByID(ctx, resumeID)
	if err != nil {
		return nil, nil, notFound(err, errors.ErrResumeNotFound, "find resume")
	}
	candidate, err := s.candidates.FindByID(ctx, resume.CandidateID)
	if err != nil {
		return nil, nil, notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	if err := s.access.canAccessCandidate(ctx, actor, candidate); err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(ctx, resume.StoragePath)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, nil, errors.ErrResumeNotFound
		}
		return nil, nil, fmt.Errorf("open resume: %w", err)
	}
	return resume, rc, nil
}

func (s *uploadService) Delete(ctx context.Context, userID uuid.UUID, resumeID uuid.UUID) error {
	candidate, err := s.candidates.FindByUserID(ctx, userID)
	if err != nil {
		return notFound(err, errors.ErrCandidateNotFound, "find candidate")
	}
	resume, err := s.resumes.FindByID(ctx, resumeID)
	if err != nil {
		return notFound(err, errors.ErrResumeNotFound, "find resume")
	}
	if resume.CandidateID != candidate.ID {
		return errors.ErrResumeNotFound
	}

	if err := s.resumes.Delete(ctx, resume.ID); err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if err := s.store.Delete(ctx, resume.StoragePath); err != nil {
		logger.WithError(err).Warn("failed to delete resume file", "path", resume.StoragePath)
	}
	return nil
}
