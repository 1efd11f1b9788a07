package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/cvstudio/internal/cache"
	"github.com/yoockh/cvstudio/internal/cvformat"
	"github.com/yoockh/cvstudio/internal/extract"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/repositories"
	"github.com/yoockh/cvstudio/internal/storage"
	"github.com/yoockh/cvstudio/internal/utils"
)

// CVFooter is attached to every CV produced by the upload flow.
const CVFooter = "Exclusive Household Staff & Nannies\nwww.exclusivehouseholdstaff.com\nTelephone: +44 (0) 203 358 7000"

const mimePDF = "application/pdf"

type UploadResult struct {
	CVID        string             `json:"cvId"`
	FormattedCV models.FormattedCV `json:"formattedCV"`
}

type UploadService interface {
	// HandleUpload always removes every file in files before returning.
	HandleUpload(ctx context.Context, userID string, files models.UploadedFileSet) (*UploadResult, error)
}

type uploadService struct {
	extractor extract.Extractor
	formatter cvformat.Formatter
	records   repositories.CVRecordRepository
	files     storage.TempStore
	archive   storage.Uploader // optional
	cache     cache.Cache
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewUploadService(
	extractor extract.Extractor,
	formatter cvformat.Formatter,
	records repositories.CVRecordRepository,
	files storage.TempStore,
	archive storage.Uploader,
	c cache.Cache,
	log logrus.FieldLogger,
) UploadService {
	if c == nil {
		c = cache.Noop{}
	}
	return &uploadService{
		extractor: extractor,
		formatter: formatter,
		records:   records,
		files:     files,
		archive:   archive,
		cache:     c,
		log:       log,
		now:       time.Now,
	}
}

func (s *uploadService) HandleUpload(ctx context.Context, userID string, files models.UploadedFileSet) (res *UploadResult, err error) {
	const op = "UploadService.HandleUpload"

	// a client disconnect must not abort in-flight work
	ctx = context.WithoutCancel(ctx)
	log := s.log.WithFields(logrus.Fields{"op": op, "user_id": userID})

	defer s.cleanup(log, files)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("upload pipeline panicked")
			res, err = nil, utils.E(utils.CodeInternal, op, "Server error during file upload", fmt.Errorf("%w: panic: %v", utils.ErrUpload, r))
		}
	}()

	if missing := files.Missing(); len(missing) > 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "No file uploaded", fmt.Errorf("%w: %v", utils.ErrMissingFile, missing))
	}
	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", utils.ErrUnauthenticated)
	}

	text, err := s.extractAll(ctx, files)
	if err != nil {
		log.WithError(err).Error("text extraction failed")
		return nil, utils.E(utils.CodeInternal, op, "Error extracting text from PDF", fmt.Errorf("%w: %v", utils.ErrExtraction, err))
	}

	cv, err := s.formatter.Format(ctx, text.Resume, text.EHSForm)
	if err != nil {
		if !errors.Is(err, utils.ErrFormatting) {
			err = utils.E(utils.CodeInternal, op, "Error formatting CV using AI", fmt.Errorf("%w: %v", utils.ErrFormatting, err))
		}
		return nil, err
	}

	cv.Footer = CVFooter
	cv.Header.PhotoURL = s.photoURL(ctx, log, userID, files.UserImage)

	rec := &models.CVRecord{
		ID:            uuid.NewString(),
		Resume:        *files.Resume,
		EHSForm:       *files.EHSForm,
		UserImage:     *files.UserImage,
		ExtractedText: text,
		FormattedCV:   *cv,
		UploadedBy:    userID,
		UploadedAt:    s.now().UTC(),
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		log.WithError(err).Error("failed to persist cv record")
		return nil, utils.E(utils.CodeInternal, op, "Server error during file upload", fmt.Errorf("%w: %v", utils.ErrUpload, err))
	}

	if err := s.cache.Del(ctx, cache.CVListKey(userID)); err != nil {
		log.WithError(err).Warn("failed to invalidate cv list cache")
	}

	log.WithField("cv_id", rec.ID).Info("cv uploaded")
	return &UploadResult{CVID: rec.ID, FormattedCV: rec.FormattedCV}, nil
}

// extractAll runs both extractions concurrently. Non-PDF slots yield "".
func (s *uploadService) extractAll(ctx context.Context, files models.UploadedFileSet) (models.ExtractedText, error) {
	var out models.ExtractedText

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.extractOne(gctx, files.Resume)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		out.Resume = t
		return nil
	})
	g.Go(func() error {
		t, err := s.extractOne(gctx, files.EHSForm)
		if err != nil {
			return fmt.Errorf("ehsForm: %w", err)
		}
		out.EHSForm = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.ExtractedText{}, err
	}
	return out, nil
}

func (s *uploadService) extractOne(ctx context.Context, f *models.UploadedFile) (string, error) {
	if f.MimeType != mimePDF {
		return "", nil
	}
	return s.extractor.Extract(ctx, f.Path)
}

// photoURL prefers an archived copy, since the temp file is deleted before the response.
func (s *uploadService) photoURL(ctx context.Context, log logrus.FieldLogger, userID string, img *models.UploadedFile) string {
	if s.archive == nil {
		return img.Path
	}

	fd, err := os.Open(img.Path)
	if err != nil {
		log.WithError(err).Warn("photo archive skipped")
		return img.Path
	}
	defer fd.Close()

	object := path.Join("photos", userID, img.StoredName)
	url, err := s.archive.Upload(ctx, object, img.MimeType, fd)
	if err != nil {
		log.WithError(err).Warn("photo archive failed")
		return img.Path
	}
	return url
}

func (s *uploadService) cleanup(log logrus.FieldLogger, files models.UploadedFileSet) {
	for _, f := range files.Present() {
		if err := s.files.Remove(f.Path); err != nil {
			log.WithError(err).WithField("path", f.Path).Warn("failed to delete temp file")
		}
	}
}
