package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/validator"
)

// APIError is a non-2xx answer from the server; Message is shown to the user verbatim.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string { return e.Message }

// TokenRelated mirrors the web client: any message mentioning "token" invalidates the stored one.
func (e *APIError) TokenRelated() bool { return strings.Contains(e.Message, "token") }

type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type Upload struct {
	Message     string             `json:"message"`
	CVID        string             `json:"cvId"`
	FormattedCV models.FormattedCV `json:"formattedCV"`
}

// Files are local paths for the three upload slots.
type Files struct {
	Resume    string
	EHSForm   string
	UserImage string
}

func (f Files) complete() bool {
	return f.Resume != "" && f.EHSForm != "" && f.UserImage != ""
}

// Client talks to the /api surface of the server.
type Client struct {
	baseURL string
	httpDo  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, in validator.RegisterInput) (*Account, error) {
	var out Account
	if err := c.doJSON(ctx, http.MethodPost, "/users/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, in validator.LoginInput) (*Account, error) {
	var out Account
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify returns the user id the token belongs to.
func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/users/verify", token, nil, &out); err != nil {
		return "", err
	}
	return out.User.ID, nil
}

func (c *Client) GetCV(ctx context.Context, token, id string) (*models.CVRecord, error) {
	var out models.CVRecord
	if err := c.doJSON(ctx, http.MethodGet, "/cv/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(ctx context.Context, token string, files Files) (*Upload, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	parts := []struct{ field, path string }{
		{models.FieldResume, files.Resume},
		{models.FieldEHSForm, files.EHSForm},
		{models.FieldUserImage, files.UserImage},
	}
	for _, p := range parts {
		if err := attach(mw, p.field, p.path); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cv/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var out Upload
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func attach(mw *multipart.Writer, field, path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer fd.Close()

	ctype, err := contentType(fd, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", field, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(path))))
	h.Set("Content-Type", ctype)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, fd)
	return err
}

// contentType goes by extension first and sniffs the head of the file otherwise.
// The server only extracts text from parts labelled application/pdf.
func contentType(fd *os.File, path string) (string, error) {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(fd, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := fd.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = fmt.Sprintf("request failed (%d)", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message, Errors: e.Errors}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
