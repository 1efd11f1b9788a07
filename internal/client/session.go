package client

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/render"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateDisplaying
	StateError
	StateGeneratingPDF
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateDisplaying:
		return "displaying"
	case StateError:
		return "error"
	case StateGeneratingPDF:
		return "generating_pdf"
	default:
		return "unknown"
	}
}

var (
	ErrBusy          = errors.New("another operation is in progress")
	ErrMissingFiles  = errors.New("Please select all required files")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrNothingToShow = errors.New("no CV to render")
)

// PDFRenderer is the part of render.Renderer a session needs.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, cv models.FormattedCV) ([]byte, error)
}

// Document is a rendered PDF and the file name it should be saved under.
type Document struct {
	Name string
	Data []byte
}

// Session drives one user's submit/display/export flow. Only one of
// Submit and GeneratePDF may run at a time.
type Session struct {
	api      *Client
	tokens   *TokenStore
	renderer PDFRenderer
	log      logrus.FieldLogger

	mu    sync.Mutex
	state State
	cv    *models.FormattedCV
	err   error
}

func NewSession(api *Client, tokens *TokenStore, renderer PDFRenderer, log logrus.FieldLogger) *Session {
	return &Session{api: api, tokens: tokens, renderer: renderer, log: log}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the last failure, set while in StateError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) CV() *models.FormattedCV {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cv
}

// enter moves to next unless a blocking operation is running.
func (s *Session) enter(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateGeneratingPDF {
		return ErrBusy
	}
	s.state = next
	return nil
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state, s.err = StateError, err
	s.mu.Unlock()
	return err
}

// Submit uploads the three files and displays the formatted CV on success.
func (s *Session) Submit(ctx context.Context, files Files) (*Upload, error) {
	if err := s.enter(StateSubmitting); err != nil {
		return nil, err
	}

	if !files.complete() {
		return nil, s.fail(ErrMissingFiles)
	}
	token, err := s.tokens.Load()
	if err != nil {
		return nil, s.fail(err)
	}
	if token == "" {
		return nil, s.fail(ErrNotLoggedIn)
	}

	res, err := s.api.Upload(ctx, token, files)
	if err != nil {
		s.dropTokenOn(err)
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.state, s.cv, s.err = StateDisplaying, &res.FormattedCV, nil
	s.mu.Unlock()
	return res, nil
}

// Show displays a CV obtained elsewhere, e.g. a stored record.
func (s *Session) Show(cv models.FormattedCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateGeneratingPDF {
		return ErrBusy
	}
	s.state, s.cv, s.err = StateDisplaying, &cv, nil
	return nil
}

// GeneratePDF renders the displayed CV. The session returns to
// StateDisplaying whether or not rendering succeeds.
func (s *Session) GeneratePDF(ctx context.Context) (*Document, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting, StateGeneratingPDF:
		s.mu.Unlock()
		return nil, ErrBusy
	case StateDisplaying:
	default:
		s.mu.Unlock()
		return nil, ErrNothingToShow
	}
	s.state = StateGeneratingPDF
	cv := *s.cv
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateDisplaying
		s.mu.Unlock()
	}()

	data, err := s.renderer.RenderPDF(ctx, cv)
	if err != nil {
		s.log.WithError(err).Error("pdf generation failed")
		return nil, err
	}
	return &Document{Name: render.FileName(cv), Data: data}, nil
}

func (s *Session) dropTokenOn(err error) {
	var ae *APIError
	if !errors.As(err, &ae) || !ae.TokenRelated() {
		return
	}
	if cerr := s.tokens.Clear(); cerr != nil {
		s.log.WithError(cerr).Warn("failed to clear stored token")
	}
}
