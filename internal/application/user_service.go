package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abdulwahab5547/receiptify-api/internal/domain/entity"
	repo "github.com/abdulwahab5547/receiptify-api/internal/domain/repository"
	"github.com/abdulwahab5547/receiptify-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorageUnavailable = errors.New("object storage unavailable")
)

// ObjectStorage is the external asset host: it durably stores an uploaded
// file and returns its permanent URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type Service struct {
	Repo          repo.UserRepository
	JWT           *helpers.JWTManager
	Store         ObjectStorage
	Logger        *logrus.Logger
	UploadTimeout time.Duration
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, store ObjectStorage, logger *logrus.Logger, uploadTimeout time.Duration) *Service {
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	return &Service{
		Repo:          r,
		JWT:           jwt,
		Store:         store,
		Logger:        logger,
		UploadTimeout: uploadTimeout,
	}
}

type SignupInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	CompanyName   string
	CompanySlogan string
}

// Signup creates a user with a bcrypt-hashed credential and an empty
// receipt list. Email uniqueness is enforced by the store; a duplicate
// surfaces as repository.ErrDuplicateEmail.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		PasswordHash:  hash,
		CompanyName:   in.CompanyName,
		CompanySlogan: in.CompanySlogan,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and issues a bearer token. Unknown email
// and wrong password collapse into the same error so callers cannot probe
// which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetReceipts(ctx context.Context, userID string) ([]string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if u.ReceiptURLs == nil {
		return []string{}, nil
	}
	return u.ReceiptURLs, nil
}

// UploadReceipt moves one receipt image from the request into the object
// store and appends the resulting URL to the user's record. The store
// write is not rolled back if the append fails; the caller may retry the
// whole operation.
func (s *Service) UploadReceipt(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	key := receiptObjectPath(userID, filename)

	upCtx, cancel := context.WithTimeout(ctx, s.UploadTimeout)
	defer cancel()
	url, err := s.Store.Upload(upCtx, key, contentType, r)
	if err != nil || url == "" {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("receipt upload to object store failed")
		}
		return "", ErrStorageUnavailable
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		// stale token for a deleted account; the stored object is orphaned
		return "", ErrUserNotFound
	}

	if err := s.Repo.AppendReceiptURL(ctx, u.ID, url); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "url": url}).Error("persist receipt url failed")
		}
		return "", fmt.Errorf("append receipt url: %w", err)
	}
	return url, nil
}

func receiptObjectPath(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return filepath.ToSlash(filepath.Join("receipts", userID, uuid.NewString()+ext))
}
