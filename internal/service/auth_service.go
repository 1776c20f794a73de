package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "gym-tracker"
	MinPasswordLength = 8
)

// dummyHash is compared against when a login identity is unknown so the
// response time does not reveal whether the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// Logout revokes the session behind token. Unknown, malformed or
	// already revoked tokens are not an error.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a token to the user it was issued for.
	Authenticate(ctx context.Context, token string) (primitive.ObjectID, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	jwtSecret     []byte
	jwtExpiration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, Validation("username and email are required")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// The unique indexes are the real guard; these checks give a clean
	// conflict before paying for a bcrypt hash.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, downstream(err, "check email")
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, downstream(err, "check username")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, downstream(err, "hash password")
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, downstream(err, "create user")
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credential and issues a tracked session token.
func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Password == "" || (input.Username == "" && input.Email == "") {
		return nil, Validation("username or email, and password are required")
	}

	var (
		user *domain.User
		err  error
	)
	if input.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, downstream(err, "load user")
	}

	hashToCheck := dummyHash
	if user != nil {
		hashToCheck = []byte(user.PasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hashToCheck, []byte(input.Password))
	if user == nil || compareErr != nil {
		return nil, ErrAuthenticationFailed
	}

	token, expiresAt, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the session behind token.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}
	if err := s.sessionRepo.Revoke(ctx, claims.ID, s.now().UTC()); err != nil {
		return downstream(err, "revoke session")
	}
	return nil
}

// Authenticate validates the signature, the expiry and the server-side session.
func (s *authService) Authenticate(ctx context.Context, token string) (primitive.ObjectID, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidSession
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidSession
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.ID)
	if err != nil {
		return primitive.NilObjectID, lookup(err, ErrInvalidSession, "load session")
	}
	if !session.Active(s.now()) || session.UserID != userID {
		return primitive.NilObjectID, ErrInvalidSession
	}
	return userID, nil
}

// --- Token helpers ---

// sessionClaims defines the structure of the token payload. RegisteredClaims.ID
// carries the session id.
type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *authService) issueToken(ctx context.Context, userID primitive.ObjectID) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.jwtExpiration)
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	claims := &sessionClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   userID.Hex(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, downstream(err, "sign token")
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", time.Time{}, downstream(err, "store session")
	}
	return signed, expiresAt, nil
}

// parse verifies the signature. Expiry is only enforced when checkExpiry is set.
func (s *authService) parse(token string, checkExpiry bool) (*sessionClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &sessionClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		onlyExpired := errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired
		if checkExpiry || !onlyExpired {
			return nil, err
		}
	}
	if claims.ID == "" || claims.Issuer != tokenIssuer {
		return nil, errors.New("token missing session claims")
	}
	if checkExpiry && !claims.VerifyExpiresAt(s.now(), true) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}
