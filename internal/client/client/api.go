package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/storygen/internal/client/models"
)

const (
	pathSignup   = "/auth/signup"
	pathLogin    = "/auth/login"
	pathMe       = "/auth/me"
	pathGenerate = "/generate-user-stories"
	pathHealth   = "/"

	uploadField = "file"
)

// API is the typed surface of the extraction service.
type API interface {
	Ping(ctx context.Context) error
	Signup(ctx context.Context, f models.SignupFields) (*models.AuthResult, error)
	Login(ctx context.Context, f models.LoginFields) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.Identity, error)
	GenerateStories(ctx context.Context, doc models.Document) (*Response, error)
}

var _ API = (*HTTPClient)(nil)

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, pathHealth, nil, &out, true); err != nil {
		return err
	}
	if out.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

type signupRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Organisation *string `json:"organisation"`
	Password     string  `json:"password"`
}

// Signup creates an account. It never sends the stored credential.
func (c *HTTPClient) Signup(ctx context.Context, f models.SignupFields) (*models.AuthResult, error) {
	req := signupRequest{Name: f.Name, Email: f.Email, Password: f.Password}
	if f.Organisation != "" {
		org := f.Organisation
		req.Organisation = &org
	}

	var out models.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, pathSignup, req, &out, true); err != nil {
		return nil, err
	}
	if err := validateAuthResult(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. It never sends the stored
// credential.
func (c *HTTPClient) Login(ctx context.Context, f models.LoginFields) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, loginRequest(f), &out, true); err != nil {
		return nil, err
	}
	if err := validateAuthResult(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateAuthResult(r *models.AuthResult) error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return &MalformedResponseError{Status: http.StatusOK, Raw: "response has no access token"}
	}
	return nil
}

// Me returns the identity behind the current credential.
func (c *HTTPClient) Me(ctx context.Context) (*models.Identity, error) {
	var out models.Identity
	if err := c.doJSON(ctx, http.MethodGet, pathMe, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateStories uploads doc as the single multipart field "file". The
// reply is returned undecoded past JSON; a plain-text body is accepted.
func (c *HTTPClient) GenerateStories(ctx context.Context, doc models.Document) (*Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, doc.Name))
	h.Set("Content-Type", documentContentType(doc.Name))

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}

	return c.Request(ctx, pathGenerate, RequestOptions{
		Method:      http.MethodPost,
		Body:        &body,
		ContentType: mw.FormDataContentType(),
		AllowText:   true,
	})
}

func documentContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
