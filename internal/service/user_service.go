package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UpdateProfileInput is a partial profile update; nil fields are left as they are.
// Image, when set, is a base64 data URI.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Image     *string
}

// Profile is a user together with a temporary URL for their profile image.
type Profile struct {
	User            *domain.User
	ProfileImageURL string
}

type UserService interface {
	GetProfile(ctx context.Context, actorID, userID primitive.ObjectID) (*Profile, error)
	UpdateProfile(ctx context.Context, actorID, userID primitive.ObjectID, input UpdateProfileInput) (*Profile, error)
}

type userService struct {
	userRepo  repository.UserRepository
	images    storage.ImageStore // nil when no image host is configured
	urlExpiry time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new instance of userService. images may be nil.
func NewUserService(userRepo repository.UserRepository, images storage.ImageStore, urlExpiry time.Duration, logger *zap.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		images:    images,
		urlExpiry: urlExpiry,
		logger:    logger,
	}
}

// GetProfile returns the public view of a user.
func (s *userService) GetProfile(ctx context.Context, actorID, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "load user")
	}
	if actorID != userID {
		return nil, ErrNotOwner
	}
	return s.profile(ctx, user), nil
}

// UpdateProfile merges the provided fields into the stored profile.
func (s *userService) UpdateProfile(ctx context.Context, actorID, userID primitive.ObjectID, input UpdateProfileInput) (*Profile, error) {
	existing, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "load user")
	}
	if actorID != userID {
		return nil, ErrNotOwner
	}

	update, err := normalizeProfile(input)
	if err != nil {
		return nil, err
	}

	if input.Image != nil {
		if s.images == nil {
			return nil, ErrImagesDisabled
		}
		image, err := storage.DecodeDataURI(*input.Image)
		if err != nil {
			return nil, Validation(err.Error())
		}
		key := path.Join("profiles", userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), image.Extension()))
		if err := s.images.Upload(ctx, key, image.ContentType, image.Data); err != nil {
			return nil, downstream(err, "upload profile image")
		}
		update.ProfileImageKey = &key
	}

	user, err := s.userRepo.Update(ctx, userID, update)
	if err != nil {
		if update.ProfileImageKey != nil {
			s.discardImage(userID, *update.ProfileImageKey)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, lookup(err, ErrUserNotFound, "update user")
	}

	if update.ProfileImageKey != nil && existing.ProfileImageKey != "" && existing.ProfileImageKey != *update.ProfileImageKey {
		// The old image is unreachable once the key is replaced.
		if err := s.images.DeleteObject(ctx, existing.ProfileImageKey); err != nil {
			s.logger.Warn("failed to delete previous profile image",
				zap.String("userId", userID.Hex()), zap.String("key", existing.ProfileImageKey), zap.Error(err))
		}
	}

	return s.profile(ctx, user), nil
}

// discardImage removes an uploaded image whose key never reached the user document.
func (s *userService) discardImage(userID primitive.ObjectID, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.images.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete unused profile image",
			zap.String("userId", userID.Hex()), zap.String("key", key), zap.Error(err))
	}
}

func normalizeProfile(input UpdateProfileInput) (domain.UserUpdate, error) {
	update := domain.UserUpdate{
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		Bio:       trimmed(input.Bio),
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return update, Validation("username cannot be empty")
		}
		update.Username = &username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !strings.Contains(email, "@") {
			return update, Validation("email is invalid")
		}
		update.Email = &email
	}
	return update, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// profile strips the credential hash and resolves the image URL.
func (s *userService) profile(ctx context.Context, user *domain.User) *Profile {
	user.PasswordHash = ""
	p := &Profile{User: user}
	if user.ProfileImageKey == "" || s.images == nil {
		return p
	}
	url, err := s.images.PresignedURL(ctx, user.ProfileImageKey, s.urlExpiry)
	if err != nil {
		s.logger.Warn("failed to presign profile image",
			zap.String("userId", user.ID.Hex()), zap.Error(err))
		return p
	}
	p.ProfileImageURL = url
	return p
}
