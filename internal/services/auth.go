package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	types "github.com/lawcomply/lawcomply-backend/internal/domain/user"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/ctxutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type accessClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// SetContextFromToken verifies tokenString and attaches the caller to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	PromoteToAdmin(ctx context.Context, email string) error
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	validate     *validator.Validate
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	adminEmails  map[string]bool
	now          func() time.Time
}

// NewAuthService issues HS256 tokens. Users registering with an email in
// adminEmails get the ADMIN role.
func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration, adminEmails []string) AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		validate:     NewValidator(),
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		adminEmails:  admins,
		now:          time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(as.validate, in); err != nil {
		return nil, err
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("a user with that email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := types.RoleUser
	if as.adminEmails[in.Email] {
		role = types.RoleAdmin
	}
	u := &types.User{ID: uuid.New(), Name: in.Name, Email: in.Email, Password: string(hash), Role: role}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{u}); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("a user with that email already exists")
		}
		return nil, err
	}
	as.log.Info("user registered", "user_id", u.ID, "role", role)
	return as.issue(u)
}

func (as *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(as.validate, in); err != nil {
		return nil, err
	}
	u, err := as.userRepo.GetByEmail(ctx, nil, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	}
	return as.issue(u)
}

func (as *authService) issue(u *types.User) (*AuthResult, error) {
	now := as.now()
	claims := accessClaims{
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: signed, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, fmt.Errorf("token expired: %w", apperrors.ErrUnauthorized)
		}
		return ctx, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject: %w", apperrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Name:        claims.Name,
		Role:        claims.Role,
	}), nil
}

func (as *authService) PromoteToAdmin(ctx context.Context, email string) error {
	u, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.NotFound("user %s not found", email)
	}
	return as.userRepo.UpdateRole(ctx, nil, u.ID, types.RoleAdmin)
}
