package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type UseCase struct {
	profiles repository.ProfileRepository
	sessions repository.SessionRepository
	secret   string
	issuer   string
	logger   *zap.Logger
}

func New(profiles repository.ProfileRepository, sessions repository.SessionRepository, secret, issuer string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles: profiles,
		sessions: sessions,
		secret:   secret,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login holds a fresh session plus its signed bearer token.
type Login struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// CreateSession verifies the profile, stores a session, and signs a JWT
// carrying the profile id and role.
func (uc *UseCase) CreateSession(ctx context.Context, profileID string, ttl time.Duration) (*Login, error) {
	profile, err := uc.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive() {
		return nil, domain.ErrForbidden
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Role:      profile.Role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(session)
	if err != nil {
		return nil, err
	}
	return &Login{Session: session, Token: token}, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*Login, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	token, err := uc.signToken(session)
	if err != nil {
		return nil, err
	}
	return &Login{Session: session, Token: token}, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"iss":        uc.issuer,
		"sub":        session.ProfileID,
		"user_id":    session.ProfileID,
		"role":       session.Role,
		"session_id": session.ID,
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.secret))
}
