package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"restaurant/entity"
	"restaurant/pkg/apperr"
	"restaurant/repository"
	"restaurant/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type PrincipalKind = entity.SessionKind

const (
	PrincipalUser  = entity.SessionUser
	PrincipalAdmin = entity.SessionAdmin
)

// Principal is whoever the current session belongs to. Kind is the tag:
// a regular user always has User set, the provisioned admin has User nil,
// and a user explicitly granted admin rights is an admin with User set.
type Principal struct {
	Kind      PrincipalKind
	User      *entity.User
	SessionID string
}

func (p *Principal) UserID() uint {
	if p == nil || p.User == nil {
		return 0
	}
	return p.User.ID
}

// AdminCredential is the single privileged principal provisioned at deploy
// time. PasswordHash is a bcrypt hash; an empty hash disables admin login.
type AdminCredential struct {
	Username     string
	PasswordHash string
}

type AuthOptions struct {
	Secret string
	TTL    time.Duration
	Admin  AdminCredential
	Now    func() time.Time
	Log    *zerolog.Logger
}

// IssuedSession is the result of a successful login; Token goes into the cookie.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	Principal *Principal
}

// AuthService handles register/login/logout and turns session tokens back
// into principals.
type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	creds    *CredentialService
	secret   string
	ttl      time.Duration
	admin    AdminCredential
	now      func() time.Time
	log      zerolog.Logger

	// compared against when the username is unknown so both failures cost the same
	dummyHash string
}

func NewAuthService(users *repository.UserRepository, sessions *repository.SessionRepository, creds *CredentialService, opts AuthOptions) *AuthService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	dummy, _ := creds.Hash("not-a-real-password")
	return &AuthService{
		users:     users,
		sessions:  sessions,
		creds:     creds,
		secret:    opts.Secret,
		ttl:       opts.TTL,
		admin:     opts.Admin,
		now:       now,
		log:       log,
		dummyHash: dummy,
	}
}

// Register creates a regular (non-admin) user. The unique index on
// username is the final word when two registrations race.
func (s *AuthService) Register(username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if utf8.RuneCountInString(username) > 50 {
		return nil, apperr.Validation("username must be at most 50 characters")
	}
	if password == "" {
		return nil, apperr.Validation("password is required")
	}

	existing, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrUsernameTaken
	}

	hashed, err := s.creds.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Username: username, Password: hashed, IsAdmin: false}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// LoginRegular checks a username/password pair against the users table.
// Users flagged is_admin get an admin session.
func (s *AuthService) LoginRegular(username, password string) (*IssuedSession, error) {
	user, err := s.users.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.creds.Verify(password, s.dummyHash)
		return nil, apperr.ErrInvalidCredentials
	}
	if !s.creds.Verify(password, user.Password) {
		return nil, apperr.ErrInvalidCredentials
	}

	kind := PrincipalUser
	if user.IsAdmin {
		kind = PrincipalAdmin
	}
	return s.issue(kind, user)
}

// LoginAdmin checks against the provisioned admin credential.
func (s *AuthService) LoginAdmin(username, password string) (*IssuedSession, error) {
	if s.admin.Username == "" || s.admin.PasswordHash == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	nameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := s.creds.Verify(password, s.admin.PasswordHash)
	if !nameOK || !passOK {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.issue(PrincipalAdmin, nil)
}

func (s *AuthService) issue(kind PrincipalKind, user *entity.User) (*IssuedSession, error) {
	now := s.now()
	sess := &entity.Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		ExpiresAt: now.Add(s.ttl),
	}
	var uid uint
	if user != nil {
		uid = user.ID
		sess.UserID = &uid
	}
	if err := s.sessions.Create(sess); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(sess.ID, string(kind), uid, s.secret, now, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &IssuedSession{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Principal: &Principal{Kind: kind, User: user, SessionID: sess.ID},
	}, nil
}

// Resolve maps a session token to its principal. Bad, expired or revoked
// tokens yield apperr.ErrUnauthenticated; storage failures pass through.
func (s *AuthService) Resolve(token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.ErrUnauthenticated
	}
	claims, err := utils.ParseToken(token, s.secret)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}

	sess, err := s.sessions.FindByID(claims.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.DeleteByID(sess.ID); err != nil {
			s.log.Error().Err(err).Str("session", sess.ID).Msg("drop expired session")
		}
		return nil, apperr.ErrUnauthenticated
	}
	if string(sess.Kind) != claims.Kind {
		return nil, apperr.ErrUnauthenticated
	}

	p := &Principal{Kind: sess.Kind, SessionID: sess.ID}
	if sess.UserID != nil {
		user, err := s.users.FindByID(*sess.UserID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		if err != nil {
			return nil, err
		}
		// admin grant revoked since login
		if p.Kind == PrincipalAdmin && !user.IsAdmin {
			p.Kind = PrincipalUser
		}
		p.User = user
	} else if p.Kind != PrincipalAdmin {
		return nil, apperr.ErrUnauthenticated
	}
	return p, nil
}

// Logout deletes the session row; unknown ids are fine.
func (s *AuthService) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteByID(sessionID)
}

// PruneSessions removes expired session rows.
func (s *AuthService) PruneSessions() (int64, error) {
	return s.sessions.DeleteExpired(s.now())
}

func RequireAuthenticated(p *Principal) (*Principal, error) {
	if p == nil {
		return nil, apperr.ErrUnauthenticated
	}
	return p, nil
}

func RequireAdmin(p *Principal) (*Principal, error) {
	if p == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if p.Kind != PrincipalAdmin {
		return nil, apperr.ErrForbidden
	}
	return p, nil
}

// RequireUser passes any principal backed by a users row.
func RequireUser(p *Principal) (*Principal, error) {
	if p == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if p.User == nil {
		return nil, apperr.ErrForbidden
	}
	return p, nil
}
