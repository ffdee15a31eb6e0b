package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/normalization"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
	Role      string `json:"role,omitempty"`
}

type AuthService interface {
	RegisterAuthor(ctx context.Context, profile *types.AuthorProfile) error
	LoginAuthor(ctx context.Context, email, password string) (string, string, error)
	RefreshAuthor(ctx context.Context) (string, string, error)
	LogoutAuthor(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	profileRepo  repos.AuthorProfileRepo
	tokenRepo    repos.UserTokenRepo
	jwtSecretKey string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profileRepo repos.AuthorProfileRepo,
	tokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		profileRepo:  profileRepo,
		tokenRepo:    tokenRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (as *authService) RegisterAuthor(ctx context.Context, profile *types.AuthorProfile) error {
	if profile == nil {
		return fmt.Errorf("profile required")
	}
	profile.Email = normalization.ParseInputString(profile.Email)
	profile.FirstName = normalization.TrimInputString(profile.FirstName)
	profile.LastName = normalization.TrimInputString(profile.LastName)

	if profile.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if profile.Password == "" {
		return fmt.Errorf("a password is required to register")
	}

	exists, err := as.profileRepo.EmailExists(ctx, nil, profile.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return fmt.Errorf("email is already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(profile.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	profile.Password = string(hashed)
	if profile.Role == "" {
		profile.Role = types.RoleAuthor
	}

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile.ID = uuid.New()
		if _, err := as.profileRepo.Create(ctx, tx, []*types.AuthorProfile{profile}); err != nil {
			return fmt.Errorf("create author profile: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginAuthor(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required to login")
	}

	profiles, err := as.profileRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load author by email: %w", err)
	}
	if len(profiles) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}
	profile := profiles[0]
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := &types.UserToken{
			ID:           uuid.New(),
			AuthorID:     profile.ID,
			RefreshToken: uuid.New().String(),
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.tokenRepo.Create(ctx, tx, []*types.UserToken{session}); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		tok, err := as.generateAccessToken(profile, session.ID)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		refreshToken = session.RefreshToken
		if err := as.profileRepo.StampLastLogin(ctx, tx, profile.ID, time.Now()); err != nil {
			return fmt.Errorf("stamp last login: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshAuthor(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", fmt.Errorf("no refresh token in request data")
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.tokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token")
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.tokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("delete expired refresh token: %w", err)
			}
			return fmt.Errorf("refresh token expired")
		}
		profiles, err := as.profileRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.AuthorID})
		if err != nil {
			return fmt.Errorf("load author for refresh: %w", err)
		}
		if len(profiles) == 0 {
			return fmt.Errorf("no author for the given refresh token")
		}
		profile := profiles[0]

		session := &types.UserToken{
			ID:           uuid.New(),
			AuthorID:     profile.ID,
			RefreshToken: uuid.New().String(),
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.tokenRepo.Create(ctx, tx, []*types.UserToken{session}); err != nil {
			return fmt.Errorf("create rotated session: %w", err)
		}
		if err := as.tokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		tok, err := as.generateAccessToken(profile, session.ID)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		newRefreshToken = session.RefreshToken
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutAuthor(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return fmt.Errorf("no session in request data")
	}
	return as.tokenRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{rd.SessionID})
}

func (as *authService) generateAccessToken(profile *types.AuthorProfile, sessionID uuid.UUID) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID.String(),
		Role:      profile.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	authorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid author id in token: %w", err)
	}
	sessionID := uuid.Nil
	if claims.SessionID != "" {
		sessionID, err = uuid.Parse(claims.SessionID)
		if err != nil {
			return ctx, fmt.Errorf("invalid session id in token: %w", err)
		}
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		AuthorID:    authorID,
		SessionID:   sessionID,
		Role:        claims.Role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
