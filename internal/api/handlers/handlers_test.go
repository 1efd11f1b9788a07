package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/cvstudio/internal/logger"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/services"
	"github.com/yoockh/cvstudio/internal/storage"
	"github.com/yoockh/cvstudio/internal/utils"
	"github.com/yoockh/cvstudio/internal/validator"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, in validator.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, in validator.LoginInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

type mockUploadService struct {
	mock.Mock
}

func (m *mockUploadService) HandleUpload(ctx context.Context, userID string, files models.UploadedFileSet) (*services.UploadResult, error) {
	args := m.Called(ctx, userID, files)
	res, _ := args.Get(0).(*services.UploadResult)
	return res, args.Error(1)
}

func init() { gin.SetMode(gin.TestMode) }

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/register", h.Register)

	in := validator.RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"}
	svc.On("Register", mock.Anything, in).
		Return(&services.AuthResult{ID: "u1", Name: "Jane", Email: "jane@example.com", Token: "tok"}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register",
		bytes.NewBufferString(`{"name":"Jane","email":"jane@example.com","password":"secret1"}`)))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "tok", body["token"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/register", h.Register)

	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, utils.Invalid("AuthService.Register", "Invalid email format", []string{"Invalid email format"}, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register",
		bytes.NewBufferString(`{"name":"Jane","email":"nope","password":"secret1"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid email format", body["message"])
	assert.Equal(t, []any{"Invalid email format"}, body["errors"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/login", h.Login)

	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, utils.E(utils.CodeUnauthorized, "AuthService.Login", "Invalid credentials", utils.ErrInvalidCredentials))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login",
		bytes.NewBufferString(`{"email":"jane@example.com","password":"wrong-pass"}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["message"])
}

func TestAuthHandler_Verify(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	r := gin.New()
	r.GET("/verify", withUser("u1"), h.Verify)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "u1"}, body["user"])
	assert.Equal(t, "Token is valid", body["message"])
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, name := range files {
		w, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = w.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newUploadEngine(t *testing.T, uploads services.UploadService) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	h := NewCVHandler(uploads, nil, store, 5, logger.Discard())
	r := gin.New()
	r.POST("/upload", withUser("u1"), h.Upload)
	return r, dir
}

func TestCVHandler_Upload_MissingFileUsesRealPipeline(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	// the real pipeline rejects before touching any collaborator
	uploads := services.NewUploadService(nil, nil, nil, store, nil, nil, logger.Discard())
	h := NewCVHandler(uploads, nil, store, 5, logger.Discard())
	r := gin.New()
	r.POST("/upload", withUser("u1"), h.Upload)

	body, ct := multipartBody(t, map[string]string{"resume": "cv.pdf", "ehsForm": "ehs.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decode(t, w)["message"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "saved files must be removed")
}

func TestCVHandler_Upload_NotMultipart(t *testing.T) {
	uploads := &mockUploadService{}
	uploads.On("HandleUpload", mock.Anything, "u1", models.UploadedFileSet{}).
		Return(nil, utils.E(utils.CodeInvalidArgument, "UploadService.HandleUpload", "No file uploaded", utils.ErrMissingFile))
	r, _ := newUploadEngine(t, uploads)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uploads.AssertExpectations(t)
}

func TestCVHandler_Upload_Success(t *testing.T) {
	uploads := &mockUploadService{}
	r, _ := newUploadEngine(t, uploads)

	cv := models.FormattedCV{Header: models.Header{Name: "Jane"}, Footer: services.CVFooter}
	uploads.On("HandleUpload", mock.Anything, "u1", mock.MatchedBy(func(s models.UploadedFileSet) bool {
		return s.Resume != nil && s.EHSForm != nil && s.UserImage != nil &&
			s.Resume.OriginalName == "cv.pdf" && s.UserImage.Field == models.FieldUserImage
	})).Return(&services.UploadResult{CVID: "cv-1", FormattedCV: cv}, nil)

	body, ct := multipartBody(t, map[string]string{"resume": "cv.pdf", "ehsForm": "ehs.pdf", "userImage": "me.jpg"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "CV uploaded successfully", resp["message"])
	assert.Equal(t, "cv-1", resp["cvId"])
	assert.Equal(t, "Jane", resp["formattedCV"].(map[string]any)["header"].(map[string]any)["name"])
	uploads.AssertExpectations(t)
}

type mockCVService struct {
	mock.Mock
}

func (m *mockCVService) List(ctx context.Context, userID string) ([]services.CVSummary, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]services.CVSummary)
	return out, args.Error(1)
}

func (m *mockCVService) Get(ctx context.Context, userID, id string) (*models.CVRecord, error) {
	args := m.Called(ctx, userID, id)
	rec, _ := args.Get(0).(*models.CVRecord)
	return rec, args.Error(1)
}

func (m *mockCVService) RenderPDF(ctx context.Context, userID, id string) (*services.RenderedFile, error) {
	args := m.Called(ctx, userID, id)
	f, _ := args.Get(0).(*services.RenderedFile)
	return f, args.Error(1)
}

func (m *mockCVService) RenderPage(ctx context.Context, userID, id string, page int) (*services.RenderedFile, error) {
	args := m.Called(ctx, userID, id, page)
	f, _ := args.Get(0).(*services.RenderedFile)
	return f, args.Error(1)
}

func newCVEngine(cvs services.CVService) *gin.Engine {
	h := NewCVHandler(nil, cvs, nil, 5, logger.Discard())
	r := gin.New()
	g := r.Group("/cv", withUser("u1"))
	g.GET("/:id", h.Get)
	g.GET("/:id/pdf", h.DownloadPDF)
	g.GET("/:id/pages/:n", h.PagePreview)
	return r
}

func TestCVHandler_DownloadPDF(t *testing.T) {
	cvs := &mockCVService{}
	cvs.On("RenderPDF", mock.Anything, "u1", "cv-1").
		Return(&services.RenderedFile{Name: "Jane Doe_CV.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}, nil)

	w := httptest.NewRecorder()
	newCVEngine(cvs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cv/cv-1/pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane Doe_CV.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestCVHandler_Get_Forbidden(t *testing.T) {
	cvs := &mockCVService{}
	cvs.On("Get", mock.Anything, "u1", "cv-2").
		Return(nil, utils.E(utils.CodeForbidden, "CVService.Get", "forbidden", nil))

	w := httptest.NewRecorder()
	newCVEngine(cvs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cv/cv-2", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["message"])
}

func TestCVHandler_PagePreview_BadNumber(t *testing.T) {
	cvs := &mockCVService{}

	w := httptest.NewRecorder()
	newCVEngine(cvs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cv/cv-1/pages/two", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cvs.AssertNotCalled(t, "RenderPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCVHandler_PagePreview(t *testing.T) {
	cvs := &mockCVService{}
	cvs.On("RenderPage", mock.Anything, "u1", "cv-1", 2).
		Return(&services.RenderedFile{Name: "page-2.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, nil)

	w := httptest.NewRecorder()
	newCVEngine(cvs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cv/cv-1/pages/2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

// stubbornStore saves nothing to disk and refuses every delete.
type stubbornStore struct {
	removed []string
}

func (s *stubbornStore) Save(field string, fh *multipart.FileHeader) (*models.UploadedFile, error) {
	return &models.UploadedFile{Field: field, OriginalName: fh.Filename, Path: "/tmp/held/" + field}, nil
}

func (s *stubbornStore) Remove(path string) error {
	s.removed = append(s.removed, path)
	return errors.New("permission denied")
}

func TestCVHandler_Upload_RejectedFileCleanupFailureIsLogged(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	store := &stubbornStore{}
	uploads := &mockUploadService{}
	h := NewCVHandler(uploads, nil, store, 1, log)
	r := gin.New()
	r.POST("/upload", withUser("u1"), h.Upload)

	// resume is saved first, then the oversized EHS form rejects the request
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	w, err := mw.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	_, err = w.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	w, err = mw.CreateFormFile("ehsForm", "ehs.pdf")
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte("x"), 1<<20+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large (max 1MB)", decode(t, rec)["message"])
	assert.Equal(t, []string{"/tmp/held/resume"}, store.removed)
	uploads.AssertNotCalled(t, "HandleUpload", mock.Anything, mock.Anything, mock.Anything)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "/tmp/held/resume", hook.LastEntry().Data["path"])
}
