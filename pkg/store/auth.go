package store

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Account errors surfaced to callers.
var (
	ErrEmailAlreadyRegistered = errors.New("an account with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrTokenRevoked           = errors.New("token has been revoked")
)

// AuthResult is the outcome of an account operation. Failures are reported
// in Error rather than as Go errors.
type AuthResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Auth handles sign-up, sign-in and sign-out.
type Auth struct {
	users    UserStore
	tokens   *Tokens
	denylist Denylist
	logger   zerolog.Logger
	cost     int
}

// NewAuth wires the account service. denylist may be nil.
func NewAuth(users UserStore, tokens *Tokens, denylist Denylist, logger zerolog.Logger) (a *Auth) {
	a = &Auth{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
	return a
}

func failed(err error) AuthResult {
	return AuthResult{Error: err.Error()}
}

func (a *Auth) session(u User) AuthResult {
	token, _, err := a.tokens.Issue(u)
	if err != nil {
		return failed(err)
	}

	return AuthResult{
		Success: true,
		UserID:  u.ID.String(),
		Email:   u.Email,
		Token:   token,
	}
}

// SignUp creates an account and returns a session token.
func (a *Auth) SignUp(ctx context.Context, email, password string) AuthResult {
	email = NormalizeEmail(email)

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return failed(errors.New("a valid email address is required"))
	}

	if len(password) < MinPasswordLength {
		return failed(errors.Errorf("password must be at least %d characters", MinPasswordLength))
	}

	_, err = a.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return failed(ErrEmailAlreadyRegistered)
	case !errors.Is(err, ErrNotFound):
		a.logger.Error().Err(err).Msg("User lookup failed")
		return failed(errors.New("could not create account, please try again"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return failed(errors.Wrap(err, "failed to hash password"))
	}

	u, err := a.users.Create(ctx, User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		a.logger.Error().Err(err).Msg("User create failed")
		return failed(errors.New("could not create account, please try again"))
	}

	a.logger.Info().Str("user", u.ID.String()).Msg("Account created")
	return a.session(u)
}

// SignIn checks credentials and returns a session token.
func (a *Auth) SignIn(ctx context.Context, email, password string) AuthResult {
	u, err := a.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Error().Err(err).Msg("User lookup failed")
		}
		return failed(ErrInvalidCredentials)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return failed(ErrInvalidCredentials)
	}

	return a.session(u)
}

// SignOut revokes the token until its natural expiry.
func (a *Auth) SignOut(ctx context.Context, token string) AuthResult {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return failed(err)
	}

	if a.denylist != nil {
		ttl := claims.ExpiresAt.Sub(a.tokens.now())
		err = a.denylist.Revoke(ctx, claims.ID, ttl)
		if err != nil {
			return failed(err)
		}
	}

	return AuthResult{Success: true, UserID: claims.UserID, Email: claims.Email}
}

// Verify returns the claims of a valid, unrevoked token.
func (a *Auth) Verify(ctx context.Context, token string) (claims Claims, err error) {
	claims, err = a.tokens.Parse(token)
	if err != nil {
		return claims, err
	}

	if a.denylist == nil {
		return claims, err
	}

	var revoked bool
	revoked, err = a.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return claims, err
	}

	if revoked {
		err = ErrTokenRevoked
	}
	return claims, err
}
