package intake

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// TextExtractor is the document parsing boundary: a black box that returns
// extracted text or an empty string, never an error.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) string
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service implements intake use-cases: create an application, attach
// documents, read back state. Safe for concurrent use.
type Service struct {
	Repo    domain.Repository
	Objects domain.DocumentStore // optional raw-upload archive
	Extract TextExtractor
	Clock   Clock
	Log     *zap.Logger
}

// Command untuk intake
type CreateApplicationCommand struct {
	ID                     string
	FullName               string
	Age                    int
	Address                string
	RegionCode             string
	EmploymentStatus       string
	NetMonthlyIncome       *float64
	CreditObligationsRatio *float64
	DependentsUnder12      *int
}

// CreateApplication persists a new application. The id is caller-supplied
// and unique; a duplicate returns domain.ErrDuplicateID.
func (s *Service) CreateApplication(ctx context.Context, cmd CreateApplicationCommand) (*domain.Application, error) {
	app := &domain.Application{
		ID:                     domain.ApplicationID(cmd.ID),
		FullName:               cmd.FullName,
		Age:                    cmd.Age,
		Address:                cmd.Address,
		RegionCode:             cmd.RegionCode,
		EmploymentStatus:       domain.EmploymentStatus(cmd.EmploymentStatus),
		NetMonthlyIncome:       cmd.NetMonthlyIncome,
		CreditObligationsRatio: cmd.CreditObligationsRatio,
		DependentsUnder12:      cmd.DependentsUnder12,
		CreatedAt:              s.Clock.Now(),
	}
	if err := s.Repo.SaveApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Service) GetApplication(ctx context.Context, id domain.ApplicationID) (*domain.Application, error) {
	return s.Repo.GetApplication(ctx, id)
}

// AddDocument extracts text from the upload, archives the raw bytes when an
// object store is configured, and persists the document row. Extraction and
// archiving are best effort; a document with empty text is still stored.
func (s *Service) AddDocument(ctx context.Context, id domain.ApplicationID, filename, contentType string, data []byte) (*domain.Document, error) {
	if _, err := s.Repo.GetApplication(ctx, id); err != nil {
		return nil, err
	}

	text := ""
	if s.Extract != nil {
		text = s.Extract.Extract(ctx, filename, contentType, data)
	}

	doc := &domain.Document{
		ID:             uuid.New().String(),
		ApplicationID:  id,
		Filename:       filename,
		ContentType:    contentType,
		SizeBytes:      int64(len(data)),
		ContentText:    text,
		ContentPreview: domain.PreviewText(text),
		CreatedAt:      s.Clock.Now(),
	}

	if s.Objects != nil {
		key := fmt.Sprintf("%s/%s-%s", id, doc.ID, filename)
		url, err := s.Objects.Upload(ctx, key, contentType, doc.SizeBytes, bytes.NewReader(data))
		if err != nil {
			if s.Log != nil {
				s.Log.Warn("document archive upload failed",
					zap.String("application_id", string(id)),
					zap.String("filename", filename),
					zap.Error(err),
				)
			}
		} else {
			doc.ObjectURL = url
		}
	}

	if err := s.Repo.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, id domain.ApplicationID) ([]*domain.Document, error) {
	if _, err := s.Repo.GetApplication(ctx, id); err != nil {
		return nil, err
	}
	return s.Repo.ListDocuments(ctx, id)
}

func (s *Service) ListDecisions(ctx context.Context, id domain.ApplicationID) ([]*domain.Decision, error) {
	if _, err := s.Repo.GetApplication(ctx, id); err != nil {
		return nil, err
	}
	return s.Repo.ListDecisions(ctx, id)
}
