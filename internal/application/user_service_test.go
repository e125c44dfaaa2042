package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdulwahab5547/receiptify-api/internal/domain/entity"
	"github.com/abdulwahab5547/receiptify-api/internal/domain/repository"
	"github.com/abdulwahab5547/receiptify-api/pkg/helpers"
)

type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	nextID    int
	appendErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*entity.User{}}
}

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
	if r.appendErr != nil {
		return r.appendErr
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ReceiptURLs = append(u.ReceiptURLs, url)
	return nil
}

type fakeStorage struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *fakeStorage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.Copy(io.Discard, r)
	return "https://storage.example.com/bucket/" + objectPath, nil
}

func newTestService(repo repository.UserRepository, store ObjectStorage) *Service {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewService(repo, jwt, store, nil, time.Second)
}

func signupDemo(t *testing.T, svc *Service, email string) *entity.User {
	t.Helper()
	u, err := svc.Signup(context.Background(), SignupInput{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         email,
		Password:      "password123",
		CompanyName:   "Analytical Engines",
		CompanySlogan: "Numbers all the way down",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return u
}

func TestSignupHashesPasswordAndStartsEmpty(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	u := signupDemo(t, svc, "ada@example.com")

	if u.PasswordHash == "password123" {
		t.Fatalf("password stored in plaintext")
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, "password123") {
		t.Fatalf("stored hash does not match original password")
	}
	if len(u.ReceiptURLs) != 0 {
		t.Fatalf("new user receipt list not empty: %v", u.ReceiptURLs)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	signupDemo(t, svc, "ada@example.com")

	_, err := svc.Signup(context.Background(), SignupInput{
		FirstName: "Other", LastName: "Person",
		Email: "ada@example.com", Password: "different123",
	})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginIssuesTokenForUser(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	u := signupDemo(t, svc, "ada@example.com")

	token, exp, err := svc.Login(context.Background(), "ada@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("token already expired: %v", exp)
	}
	claims, err := svc.JWT.Parse(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != u.ID {
		t.Fatalf("token user id = %q, want %q", claims.UserID, u.ID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	signupDemo(t, svc, "ada@example.com")

	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, _, errWrongPwd := svc.Login(context.Background(), "ada@example.com", "wrong-password")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPwd, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPwd)
	}
}

func TestUploadReceiptAppendsReturnedURL(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	u := signupDemo(t, svc, "ada@example.com")

	url, err := svc.UploadReceipt(context.Background(), u.ID, strings.NewReader("png bytes"), "receipt.png", "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url == "" {
		t.Fatalf("empty url returned")
	}

	urls, err := svc.GetReceipts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get receipts: %v", err)
	}
	if len(urls) != 1 || urls[0] != url {
		t.Fatalf("receipts = %v, want exactly [%s]", urls, url)
	}
}

func TestUploadReceiptStorageFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	store := &fakeStorage{err: errors.New("bucket unreachable")}
	svc := newTestService(repo, store)
	u := signupDemo(t, svc, "ada@example.com")

	_, err := svc.UploadReceipt(context.Background(), u.ID, strings.NewReader("x"), "r.png", "image/png")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}

	urls, _ := svc.GetReceipts(context.Background(), u.ID)
	if len(urls) != 0 {
		t.Fatalf("receipt list mutated after storage failure: %v", urls)
	}
}

func TestUploadReceiptUnknownUser(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})

	_, err := svc.UploadReceipt(context.Background(), "ghost", strings.NewReader("x"), "r.png", "image/png")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUploadReceiptPersistenceFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	u := signupDemo(t, svc, "ada@example.com")
	repo.appendErr = errors.New("write conflict")

	_, err := svc.UploadReceipt(context.Background(), u.ID, strings.NewReader("x"), "r.png", "image/png")
	if err == nil {
		t.Fatalf("expected error when append fails")
	}
	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("persistence failure mapped to wrong error: %v", err)
	}
}

func TestConcurrentUploadsBothLand(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStorage{})
	u := signupDemo(t, svc, "ada@example.com")

	var wg sync.WaitGroup
	results := make([]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := svc.UploadReceipt(context.Background(), u.ID, strings.NewReader("x"), "r.png", "image/png")
			if err != nil {
				t.Errorf("upload %d: %v", i, err)
				return
			}
			results[i] = url
		}(i)
	}
	wg.Wait()

	urls, err := svc.GetReceipts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get receipts: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected both uploads to land, got %v", urls)
	}
	for _, want := range results {
		found := false
		for _, got := range urls {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("url %q missing from receipts %v", want, urls)
		}
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &fakeStorage{})
	if _, err := svc.GetProfile(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
