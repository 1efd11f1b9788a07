package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/internal/cache"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/render"
	"github.com/yoockh/cvstudio/internal/repositories"
	"github.com/yoockh/cvstudio/internal/utils"
)

// CVSummary is one row of the owner's list view.
type CVSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	JobTitle   string    `json:"jobTitle"`
	KeySkills  []string  `json:"keySkills"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// RenderedFile is a generated document ready to be served.
type RenderedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type CVService interface {
	List(ctx context.Context, userID string) ([]CVSummary, error)
	Get(ctx context.Context, userID, id string) (*models.CVRecord, error)
	RenderPDF(ctx context.Context, userID, id string) (*RenderedFile, error)
	RenderPage(ctx context.Context, userID, id string, page int) (*RenderedFile, error)
}

type cvService struct {
	records  repositories.CVRecordRepository
	cache    cache.Cache
	ttl      time.Duration
	renderer render.Renderer
	log      logrus.FieldLogger
}

func NewCVService(records repositories.CVRecordRepository, c cache.Cache, ttl time.Duration, renderer render.Renderer, log logrus.FieldLogger) CVService {
	if c == nil {
		c = cache.Noop{}
	}
	return &cvService{records: records, cache: c, ttl: ttl, renderer: renderer, log: log}
}

func (s *cvService) List(ctx context.Context, userID string) ([]CVSummary, error) {
	const op = "CVService.List"

	var out []CVSummary
	if hit, err := s.cache.GetJSON(ctx, cache.CVListKey(userID), &out); err != nil {
		s.log.WithError(err).Warn("cv list cache read failed")
	} else if hit {
		return out, nil
	}

	recs, err := s.records.ListByOwner(ctx, userID, 50)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list CVs", err)
	}

	out = make([]CVSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, CVSummary{
			ID:         r.ID,
			Name:       r.FormattedCV.Header.Name,
			JobTitle:   r.FormattedCV.Header.JobTitle,
			KeySkills:  r.FormattedCV.KeySkills,
			UploadedAt: r.UploadedAt,
		})
	}

	if err := s.cache.SetJSON(ctx, cache.CVListKey(userID), out, s.ttl); err != nil {
		s.log.WithError(err).Warn("cv list cache write failed")
	}
	return out, nil
}

func (s *cvService) Get(ctx context.Context, userID, id string) (*models.CVRecord, error) {
	const op = "CVService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cv id is required", utils.ErrValidation)
	}

	rec, err := s.load(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "CV not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load CV", err)
	}
	if rec.UploadedBy != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return rec, nil
}

// load is read-through; records never change after insert.
func (s *cvService) load(ctx context.Context, id string) (*models.CVRecord, error) {
	var rec models.CVRecord
	hit, err := s.cache.GetJSON(ctx, cache.CVRecordKey(id), &rec)
	if err != nil {
		s.log.WithError(err).Warn("cv cache read failed")
	}
	if hit {
		return &rec, nil
	}

	got, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.CVRecordKey(id), got, s.ttl); err != nil {
		s.log.WithError(err).Warn("cv cache write failed")
	}
	return got, nil
}

func (s *cvService) RenderPDF(ctx context.Context, userID, id string) (*RenderedFile, error) {
	const op = "CVService.RenderPDF"

	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.RenderPDF(ctx, rec.FormattedCV)
	if err != nil {
		s.log.WithError(err).WithField("cv_id", id).Error("pdf render failed")
		return nil, utils.E(utils.CodeInternal, op, "failed to generate PDF", err)
	}
	return &RenderedFile{Name: render.FileName(rec.FormattedCV), ContentType: "application/pdf", Data: data}, nil
}

// RenderPage returns page n (1-based) as a PNG.
func (s *cvService) RenderPage(ctx context.Context, userID, id string, n int) (*RenderedFile, error) {
	const op = "CVService.RenderPage"

	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(render.Layout(rec.FormattedCV)) {
		return nil, utils.E(utils.CodeNotFound, op, "page not found", utils.ErrNotFound)
	}

	pages, err := s.renderer.RenderPageImages(ctx, rec.FormattedCV)
	if err != nil {
		s.log.WithError(err).WithField("cv_id", id).Error("page render failed")
		return nil, utils.E(utils.CodeInternal, op, "failed to render page", err)
	}
	if n > len(pages) {
		return nil, utils.E(utils.CodeNotFound, op, "page not found", utils.ErrNotFound)
	}
	return &RenderedFile{Name: "page-" + strconv.Itoa(n) + ".png", ContentType: "image/png", Data: pages[n-1]}, nil
}
