package service

import (
	"context"
	"fmt"
	"time"

	"recruitflow/internal/export"
	"recruitflow/internal/repository"
)

// ExportFile is a generated spreadsheet ready to be sent.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService builds spreadsheet exports for admins.
type ExportService interface {
	Candidates(ctx context.Context) (*ExportFile, error)
	Applications(ctx context.Context) (*ExportFile, error)
}

type exportService struct {
	candidates   repository.CandidateRepository
	applications repository.JobApplicationRepository
	now          func() time.Time
}

// NewExportService creates a new export service.
func NewExportService(candidates repository.CandidateRepository, applications repository.JobApplicationRepository) ExportService {
	return &exportService{candidates: candidates, applications: applications, now: time.Now}
}

func (s *exportService) Candidates(ctx context.Context) (*ExportFile, error) {
	candidates, err := s.candidates.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	data, err := export.CandidatesWorkbook(candidates)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: export.FileName("candidates", s.now()), ContentType: export.ContentTypeXLSX, Data: data}, nil
}

func (s *exportService) Applications(ctx context.Context) (*ExportFile, error) {
	apps, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	data, err := export.ApplicationsWorkbook(apps)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: export.FileName("job_applications", s.now()), ContentType: export.ContentTypeXLSX, Data: data}, nil
}
