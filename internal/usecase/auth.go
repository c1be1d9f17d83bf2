package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"jobboard/internal/domain"
	"jobboard/pkg/password"
	"jobboard/pkg/token"

	"github.com/google/uuid"
)

const codeTTL = 10 * time.Minute

// TokenPair is what a successful login, verification or refresh returns.
type TokenPair struct {
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	User         domain.Subject `json:"user"`
}

// Auth implements the account lifecycle: register with one-time-code
// verification, login, and stateless token refresh.
type Auth struct {
	users UserStore
	codes CodeStore
	send  CodeSender
	codec *token.Codec
}

func NewAuth(users UserStore, codes CodeStore, send CodeSender, codec *token.Codec) *Auth {
	return &Auth{users: users, codes: codes, send: send, codec: codec}
}

// Register creates an unverified account and dispatches a one-time code.
func (a *Auth) Register(ctx context.Context, name, email, pass string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", domain.ErrValidation)
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	code, err := newCode()
	if err != nil {
		return nil, err
	}
	if err := a.codes.Save(ctx, email, code, codeTTL); err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	if err := a.send.Send(ctx, email, code); err != nil {
		return nil, fmt.Errorf("send verification code: %w", err)
	}
	return user, nil
}

// VerifyCode completes registration. On a match the account is marked
// verified and a token pair is issued so the client is logged in right away.
func (a *Auth) VerifyCode(ctx context.Context, email, code string) (*TokenPair, error) {
	email = normalizeEmail(email)
	if err := a.codes.Consume(ctx, email, code); err != nil {
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Verified = true
	return a.issuePair(user)
}

// Login checks credentials and returns a token pair. Unknown email and wrong
// password produce the same error.
func (a *Auth) Login(ctx context.Context, email, pass string) (*TokenPair, error) {
	user, err := a.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := password.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, domain.ErrAccountUnverified
	}
	return a.issuePair(user)
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is the sole source of identity; no store lookup.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	sub, err := claims.Subject()
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	access, err := a.codec.Issue(sub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: access, User: sub}, nil
}

func (a *Auth) issuePair(user *domain.User) (*TokenPair, error) {
	sub := domain.SubjectOf(user)
	access, err := a.codec.Issue(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := a.codec.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: access, RefreshToken: refresh, User: sub}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newCode draws a 6-digit one-time code from crypto/rand.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
