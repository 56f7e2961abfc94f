// Package auth implements passwordless sign-in: single-use emailed magic
// links redeemed for opaque store-backed sessions.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	appErrors "rinkhq-backend/pkg/errors"
)

const (
	// DefaultTokenTTL bounds how long an unredeemed magic link stays valid.
	DefaultTokenTTL = 15 * time.Minute

	// DefaultSessionTTL bounds a signed-in session.
	DefaultSessionTTL = 30 * 24 * time.Hour

	secretBytes = 32
)

// StartResult reports a sent magic link.
type StartResult struct {
	Email     string
	ExpiresAt int64
	MessageID string
}

// Session is a freshly minted sign-in session.
type Session struct {
	SessionID string
	Email     string
	CreatedAt int64
	ExpiresAt int64
	MaxAge    int
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	Email string
}

// Authenticator issues magic links and resolves sessions.
type Authenticator struct {
	tokens     ports.TokenStore
	sessions   ports.SessionStore
	mailer     ports.Mailer
	validate   *validator.Validate
	logger     *zap.Logger
	baseURL    string
	tokenTTL   time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthenticator creates an authenticator. baseURL is the public origin
// the callback link points at.
func NewAuthenticator(tokens ports.TokenStore, sessions ports.SessionStore, mailer ports.Mailer, baseURL string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		tokens:     tokens,
		sessions:   sessions,
		mailer:     mailer,
		validate:   validator.New(),
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokenTTL:   DefaultTokenTTL,
		sessionTTL: DefaultSessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start validates and normalizes the email, stores a hashed single-use token
// and mails the sign-in link. The raw secret leaves the process only inside
// the emailed URL.
func (a *Authenticator) Start(ctx context.Context, email string) (*StartResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := a.validate.Var(normalized, "required,email"); err != nil {
		return nil, appErrors.NewValidationError("a valid email address is required").
			WithCode(appErrors.CodeInvalidEmail)
	}

	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, appErrors.NewInternalError("generate token secret: " + err.Error())
	}
	rawSecret := hex.EncodeToString(secret)

	tokenID := uuid.NewString()
	expiresAt := a.now().Add(a.tokenTTL).Unix()
	if err := a.tokens.CreateToken(ctx, domain.MagicToken{
		TokenID:   tokenID,
		Email:     normalized,
		TokenHash: hashSecret(rawSecret),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}

	linkURL := fmt.Sprintf("%s/auth/callback?token=%s.%s", a.baseURL, tokenID, rawSecret)
	messageID, err := a.mailer.SendMagicLink(ctx, normalized, linkURL)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Magic link sent",
		zap.String("tokenID", tokenID),
		zap.String("messageID", messageID),
	)
	return &StartResult{Email: normalized, ExpiresAt: expiresAt, MessageID: messageID}, nil
}

// Complete redeems a raw "{tokenId}.{secret}" token and mints a session.
// Malformed input is rejected before any store access; a wrong secret, a
// reused token and an expired token all surface as the same error.
func (a *Authenticator) Complete(ctx context.Context, rawToken string) (*Session, error) {
	tokenID, secret, ok := strings.Cut(rawToken, ".")
	if !ok || tokenID == "" || secret == "" {
		return nil, invalidLink()
	}
	if _, err := uuid.Parse(tokenID); err != nil {
		return nil, invalidLink()
	}

	now := a.now()
	token, err := a.tokens.RedeemToken(ctx, tokenID, hashSecret(secret), now)
	if err != nil {
		return nil, err
	}

	session := domain.AuthSession{
		SessionID: uuid.NewString(),
		Email:     token.Email,
		ExpiresAt: now.Add(a.sessionTTL).Unix(),
	}
	if err := a.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	a.logger.Info("Session minted", zap.String("sessionID", session.SessionID))
	return &Session{
		SessionID: session.SessionID,
		Email:     session.Email,
		CreatedAt: now.Unix(),
		ExpiresAt: session.ExpiresAt,
		MaxAge:    int(a.sessionTTL / time.Second),
	}, nil
}

// GetSession resolves a session id to the caller's identity. Blank input, a
// missing record and an expired session all return nil identically.
func (a *Authenticator) GetSession(ctx context.Context, sessionID string) (*Identity, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.ExpiresAt < a.now().Unix() {
		return nil, nil
	}
	return &Identity{Email: session.Email}, nil
}

// Logout removes the session. Logging out an unknown session succeeds.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return a.sessions.DeleteSession(ctx, sessionID)
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func invalidLink() error {
	return appErrors.NewUnauthorizedError("invalid or expired magic link").
		WithCode(appErrors.CodeInvalidMagicLink)
}
