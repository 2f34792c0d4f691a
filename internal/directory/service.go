// Package directory implements the account directory and the single active
// session. Both live as JSON records in a kv.Repository:
//
//   - common.AccountsKey holds the account collection in insertion order.
//   - common.SessionKey holds the current session, if any.
//
// Every call is a full read-compute-write of those records. Calls on one
// Service are serialised, and account mutations go through
// kv.Repository.Update so the backend applies them atomically.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/auth"
	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/models"
	"github.com/dmitrijs2005/gophdesk/internal/repositories/kv"
	"github.com/google/uuid"
)

// errUnchanged aborts an Update callback that has nothing to write.
var errUnchanged = errors.New("unchanged")

// Service is the sole authority over account records and the session.
type Service struct {
	repo    kv.Repository
	issuer  *auth.TokenIssuer
	hasher  cryptox.Hasher
	log     logging.Logger
	latency Latency
	now     func() time.Time

	adminUsername string
	adminSecret   string

	mu sync.Mutex

	// digest compared against when the username is unknown
	dummyOnce sync.Once
	dummySalt []byte
	dummyHash []byte
}

// NewService builds a Service over repo. Tokens are signed by issuer.
func NewService(repo kv.Repository, issuer *auth.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		issuer:        issuer,
		hasher:        cryptox.DefaultHasher(),
		log:           logging.Discard(),
		now:           time.Now,
		adminUsername: common.BootstrapUsername,
		adminSecret:   common.BootstrapSecret,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize seeds the account collection with the bootstrap administrator
// when it does not exist yet. An existing collection is left untouched.
func (s *Service) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var admin models.Account
	seeded := false
	err := s.repo.Update(ctx, common.AccountsKey, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, errUnchanged
		}
		// built only when seeding, the hasher is slow
		admin = s.newAccount(s.adminUsername, s.adminSecret, models.RoleAdmin)
		seeded = true
		return json.Marshal([]models.Account{admin})
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return fmt.Errorf("initialize accounts: %w", err)
	}

	if seeded {
		s.log.Info(ctx, "account store seeded", "username", admin.Username, "id", admin.ID)
	}
	return nil
}

// Register appends a new active USER account. The username must not be
// taken; no other validation is done here.
func (s *Service) Register(ctx context.Context, username, secret string) (*models.Account, error) {
	if err := wait(ctx, s.latency.Auth); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.newAccount(username, secret, models.RoleUser)

	err := s.updateAccounts(ctx, func(accounts []models.Account) ([]models.Account, error) {
		if _, ok := findByUsername(accounts, username); ok {
			return nil, common.ErrDuplicateUsername
		}
		return append(accounts, account), nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			s.log.Info(ctx, "registration rejected", "username", username)
		}
		return nil, err
	}

	s.log.Info(ctx, "account registered", "username", username, "id", account.ID)
	return &account, nil
}

// Authenticate verifies the credentials and, on success, replaces the
// current session with a new one. Unknown usernames and wrong secrets both
// yield common.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, secret string) (*models.Session, error) {
	if err := wait(ctx, s.latency.Auth); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	secretBytes := []byte(secret)
	defer common.WipeByteArray(secretBytes)

	account, ok := findByUsername(accounts, username)
	if !ok {
		// same work as a real verification
		salt, digest := s.dummyDigest()
		s.hasher.Verify(secretBytes, salt, digest)
		s.log.Info(ctx, "authentication failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(secretBytes, account.Salt, account.SecretHash) {
		s.log.Info(ctx, "authentication failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	if !account.Active {
		s.log.Info(ctx, "inactive account login refused", "username", username)
		return nil, common.ErrAccountInactive
	}

	issuedAt := s.now().UTC()
	token, err := s.issuer.Issue(account.ID, issuedAt)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}

	session := &models.Session{
		Account:  account.View(),
		Token:    token,
		IssuedAt: issuedAt,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.repo.Set(ctx, common.SessionKey, data); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info(ctx, "session started", "username", username, "id", account.ID)
	return session, nil
}

// Logout removes the current session whether or not one exists.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, common.SessionKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Debug(ctx, "session cleared")
	return nil
}

// GetCurrentSession returns the stored session, or nil when there is none.
func (s *Service) GetCurrentSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadSession(ctx)
}

// ListAccounts returns every account, redacted, in insertion order.
func (s *Service) ListAccounts(ctx context.Context) ([]models.AccountView, error) {
	if err := wait(ctx, s.latency.List); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].View())
	}
	return views, nil
}

// GetAccount returns the redacted account with the given id.
func (s *Service) GetAccount(ctx context.Context, id string) (*models.AccountView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(accounts, id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	view := accounts[i].View()
	return &view, nil
}

// DeleteAccount removes the account with the given id. The account behind
// the current session cannot be deleted. A missing id is not an error.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := wait(ctx, s.latency.Mutate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(ctx)
	if err != nil {
		return err
	}
	if session != nil && session.Account.ID == id {
		return common.ErrSelfDeletionForbidden
	}

	err = s.updateAccounts(ctx, func(accounts []models.Account) ([]models.Account, error) {
		i := indexByID(accounts, id)
		if i < 0 {
			return nil, errUnchanged
		}
		return append(accounts[:i], accounts[i+1:]...), nil
	})
	if errors.Is(err, errUnchanged) {
		s.log.Debug(ctx, "delete of unknown account ignored", "id", id)
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted", "id", id)
	return nil
}

// ToggleActive flips the active flag of the account with the given id.
// A missing id is not an error.
func (s *Service) ToggleActive(ctx context.Context, id string) error {
	if err := wait(ctx, s.latency.Mutate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var active bool
	err := s.updateAccounts(ctx, func(accounts []models.Account) ([]models.Account, error) {
		i := indexByID(accounts, id)
		if i < 0 {
			return nil, errUnchanged
		}
		accounts[i].Active = !accounts[i].Active
		active = accounts[i].Active
		return accounts, nil
	})
	if errors.Is(err, errUnchanged) {
		s.log.Debug(ctx, "toggle of unknown account ignored", "id", id)
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account status changed", "id", id, "active", active)
	return nil
}

// --- helpers below ---

func (s *Service) newAccount(username, secret string, role models.Role) models.Account {
	secretBytes := []byte(secret)
	defer common.WipeByteArray(secretBytes)

	salt := cryptox.NewSalt()
	return models.Account{
		ID:         uuid.NewString(),
		Username:   username,
		Salt:       salt,
		SecretHash: s.hasher.Hash(secretBytes, salt),
		Role:       role,
		Active:     true,
		CreatedAt:  s.now().UTC(),
	}
}

func (s *Service) dummyDigest() ([]byte, []byte) {
	s.dummyOnce.Do(func() {
		s.dummySalt = cryptox.NewSalt()
		s.dummyHash = s.hasher.Hash(common.GenerateRandByteArray(cryptox.SaltSize), s.dummySalt)
	})
	return s.dummySalt, s.dummyHash
}

func (s *Service) loadAccounts(ctx context.Context) ([]models.Account, error) {
	data, err := s.repo.Get(ctx, common.AccountsKey)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return decodeAccounts(data)
}

// updateAccounts applies fn to the decoded collection inside kv.Update.
// fn may return errUnchanged to skip the write.
func (s *Service) updateAccounts(ctx context.Context, fn func([]models.Account) ([]models.Account, error)) error {
	err := s.repo.Update(ctx, common.AccountsKey, func(current []byte) ([]byte, error) {
		accounts, err := decodeAccounts(current)
		if err != nil {
			return nil, err
		}
		accounts, err = fn(accounts)
		if err != nil {
			return nil, err
		}
		return json.Marshal(accounts)
	})
	if err != nil && !isDomainError(err) {
		return fmt.Errorf("update accounts: %w", err)
	}
	return err
}

func (s *Service) loadSession(ctx context.Context) (*models.Session, error) {
	data, err := s.repo.Get(ctx, common.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.log.Warn(ctx, "discarding unreadable session record", "error", err)
		return nil, nil
	}
	if !session.Account.Role.Valid() {
		s.log.Warn(ctx, "discarding session with unknown role", "role", session.Account.Role)
		return nil, nil
	}
	return &session, nil
}

func decodeAccounts(data []byte) ([]models.Account, error) {
	if data == nil {
		return nil, nil
	}
	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, errUnchanged) || errors.Is(err, common.ErrDuplicateUsername)
}

func findByUsername(accounts []models.Account, username string) (models.Account, bool) {
	for _, a := range accounts {
		if a.Username == username {
			return a, true
		}
	}
	return models.Account{}, false
}

func indexByID(accounts []models.Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
