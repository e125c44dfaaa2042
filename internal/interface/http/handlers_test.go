package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulwahab5547/receiptify-api/config"
	userapp "github.com/abdulwahab5547/receiptify-api/internal/application"
	"github.com/abdulwahab5547/receiptify-api/internal/domain/entity"
	"github.com/abdulwahab5547/receiptify-api/internal/domain/repository"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
	"github.com/abdulwahab5547/receiptify-api/pkg/helpers"
	"github.com/abdulwahab5547/receiptify-api/pkg/validation"
)

var setupOnce sync.Once

func testSetup() {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})
}

type fakeRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{users: map[string]*entity.User{}} }

func (r *fakeRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.ReceiptURLs = []string{}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.ReceiptURLs = append([]string(nil), u.ReceiptURLs...)
	return &cp, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) AppendReceiptURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ReceiptURLs = append(u.ReceiptURLs, url)
	return nil
}

type fakeStorage struct {
	err error
}

func (s *fakeStorage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.Copy(io.Discard, r)
	return "https://storage.example.com/receipts-bucket/" + objectPath, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	jobs []json.RawMessage
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.jobs = append(p.jobs, b)
	return nil
}

type testAPI struct {
	router *gin.Engine
	repo   *fakeRepo
	store  *fakeStorage
	pub    *fakePublisher
	jwt    *helpers.JWTManager
}

// newTestAPI wires the full route surface with in-memory collaborators and
// no rate limiting.
func newTestAPI() *testAPI {
	testSetup()

	repo := newFakeRepo()
	store := &fakeStorage{}
	pub := &fakePublisher{}
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	cfg := &config.Config{MailSendEnabled: true, MaxUploadBytes: 10 << 20}

	svc := userapp.NewService(repo, jwt, store, nil, time.Second)
	userHandler := NewUserHandler(svc, nil)
	uploadHandler := NewUploadHandler(svc, nil, cfg.MaxUploadBytes)
	emailHandler := NewEmailHandler(pub, nil, cfg)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/signup", userHandler.Signup)
	api.POST("/login", userHandler.Login)
	api.POST("/send-email", emailHandler.Send)
	auth := api.Group("/")
	auth.Use(middleware.BearerAuth(jwt))
	auth.GET("/user", userHandler.GetProfile)
	auth.GET("/user/receipts", userHandler.GetReceipts)
	auth.POST("/upload", uploadHandler.Upload)

	return &testAPI{router: r, repo: repo, store: store, pub: pub, jwt: jwt}
}

func (a *testAPI) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// postMultipart posts fields plus an optional file part.
func (a *testAPI) postMultipart(t *testing.T, path, token, fileField, filename, fileContentType string, fileBody []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileField != "" {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename)}
		hdr["Content-Type"] = []string{fileContentType}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(fileBody); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func (a *testAPI) signupAndLogin(t *testing.T, email, password string) string {
	t.Helper()
	w := a.postJSON(t, "/api/signup", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace",
		"email": email, "password": password,
		"companyName": "Analytical Engines", "companySlogan": "Numbers all the way down",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", w.Code, w.Body.String())
	}
	w = a.postJSON(t, "/api/login", map[string]string{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}
	token, _ := decodeData(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login response carried no token: %s", w.Body.String())
	}
	return token
}
