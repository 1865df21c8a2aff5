package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/croftbay/accounts/internal/accounts/domain"
	"github.com/croftbay/accounts/internal/accounts/store"
	"github.com/croftbay/accounts/pkg/cryptox"
	"github.com/croftbay/accounts/pkg/idx"
	"github.com/croftbay/accounts/pkg/randx"
	"github.com/croftbay/accounts/pkg/slogx"
)

// PasswordHasher is the credential-hashing capability. The lifecycle never
// inspects hashes, it only stores what Hash returns and delegates checks to
// Verify.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
}

type argonHasher struct{}

func (argonHasher) Hash(password string) (string, error)      { return cryptox.HashPassword(password) }
func (argonHasher) Verify(password, encodedHash string) error { return cryptox.VerifyPassword(password, encodedHash) }

// AccountService orchestrates the account lifecycle: registration and
// activation, password reset request/completion, admin account management, and
// authority assignment.
//
// Missing targets are never errors here. Every operation whose target account
// does not exist returns a nil result (or plain nil error for the void
// operations) so callers cannot distinguish "unknown token" from "expired
// token" or "no such account". Store failures propagate unchanged.
type AccountService struct {
	Store  store.Store
	Hasher PasswordHasher // defaults to Argon2id via cryptox
}

func (s *AccountService) hasher() PasswordHasher {
	if s.Hasher != nil {
		return s.Hasher
	}
	return argonHasher{}
}

// RegistrationInput carries the self-registration fields. The password is
// supplied by the registrant.
type RegistrationInput struct {
	Login     string
	Password  string
	FirstName string
	LastName  string
	Email     string
	ImageURL  string
	LangKey   string
}

// AccountInput carries the administrative create/update fields. No password:
// admin-created accounts get a generated temporary password and claim the
// account through the reset flow.
type AccountInput struct {
	ID          string
	Login       string
	FirstName   string
	LastName    string
	Email       string
	ImageURL    string
	LangKey     string
	Activated   bool
	Authorities []string
}

// ProfileInput carries the non-credential fields an account holder may change
// about themselves.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	LangKey   string
	ImageURL  string
}

// AccountView is the projected representation handed to callers. It carries no
// credential or key material.
type AccountView struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"imageUrl"`
	LangKey     string    `json:"langKey"`
	Activated   bool      `json:"activated"`
	Authorities []string  `json:"authorities"`
	CreatedAt   time.Time `json:"createdDate"`
}

func NewAccountView(a domain.Account) AccountView {
	return AccountView{
		ID:          a.ID,
		Login:       a.Login,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		ImageURL:    a.ImageURL,
		LangKey:     a.LangKey,
		Activated:   a.Activated,
		Authorities: a.Authorities,
		CreatedAt:   a.CreatedAt,
	}
}

// ActivateRegistration activates the pending account holding the given
// activation key and consumes the key. Unknown keys yield a nil account.
// Activation keys do not expire; only reset keys are time-boxed.
func (s *AccountService) ActivateRegistration(ctx context.Context, key string) (*domain.Account, error) {
	log := slogx.FromContext(ctx)

	var activated *domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByActivationKey(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		account.Activated = true
		account.ActivationKey = nil
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		activated = &account
		return nil
	})
	if err != nil {
		return nil, err
	}

	if activated != nil {
		log.Debug("activated account", "login", activated.Login)
	}
	return activated, nil
}

// RequestPasswordReset mints a fresh reset key for the activated account with
// the given email. Unknown or unactivated accounts yield nil with no reset
// issued. Dispatching the key out of band is the caller's concern.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (*domain.Account, error) {
	log := slogx.FromContext(ctx)

	var updated *domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByEmail(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !account.Activated {
			return nil
		}

		key, err := randx.ResetKey()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		account.ResetKey = &key
		account.ResetDate = &now
		account.UpdatedAt = now
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		updated = &account
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		log.Debug("password reset requested", "login", updated.Login)
	}
	return updated, nil
}

// CompletePasswordReset sets a new password for the account holding the given
// reset key and clears the key. An unknown key and an expired key both yield
// nil; the two cases are deliberately indistinguishable.
func (s *AccountService) CompletePasswordReset(ctx context.Context, newPassword, key string) (*domain.Account, error) {
	log := slogx.FromContext(ctx)

	var updated *domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByResetKey(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !account.ResetKeyValid(time.Now()) {
			return nil
		}

		hash, err := s.hasher().Hash(newPassword)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
		account.ResetKey = nil
		account.ResetDate = nil
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		updated = &account
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		log.Debug("password reset completed", "login", updated.Login)
	}
	return updated, nil
}

// RegisterAccount creates an unactivated account for self-service
// registration: the supplied password is hashed, a fresh activation key is
// minted, and the default user authority is assigned when resolvable.
func (s *AccountService) RegisterAccount(ctx context.Context, in RegistrationInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	hash, err := s.hasher().Hash(in.Password)
	if err != nil {
		return domain.Account{}, err
	}
	activationKey, err := randx.ActivationKey()
	if err != nil {
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:            idx.New().String(),
		Login:         strings.ToLower(in.Login),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		ImageURL:      in.ImageURL,
		LangKey:       in.LangKey,
		PasswordHash:  hash,
		Activated:     false,
		ActivationKey: &activationKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		account.Authorities, err = resolveAuthorities(ctx, tx.Authorities(), []string{domain.AuthorityUser})
		if err != nil {
			return err
		}
		return tx.Accounts().Create(ctx, account)
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Debug("registered account", "login", account.Login)
	return account, nil
}

// CreateAccount is the administrative creation path. The account starts
// activated with a generated temporary password that is never revealed; the
// pre-populated reset key lets the new user claim the account through the
// reset flow. LangKey defaults to "en"; unresolvable authority names are
// dropped, never rejected.
func (s *AccountService) CreateAccount(ctx context.Context, in AccountInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	tempPassword, err := randx.Password()
	if err != nil {
		return domain.Account{}, err
	}
	hash, err := s.hasher().Hash(tempPassword)
	if err != nil {
		return domain.Account{}, err
	}
	resetKey, err := randx.ResetKey()
	if err != nil {
		return domain.Account{}, err
	}

	langKey := in.LangKey
	if langKey == "" {
		langKey = domain.DefaultLangKey
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Login:        strings.ToLower(in.Login),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ImageURL:     in.ImageURL,
		LangKey:      langKey,
		PasswordHash: hash,
		Activated:    true,
		ResetKey:     &resetKey,
		ResetDate:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		account.Authorities, err = resolveAuthorities(ctx, tx.Authorities(), in.Authorities)
		if err != nil {
			return err
		}
		return tx.Accounts().Create(ctx, account)
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Debug("created account", "login", account.Login)
	return account, nil
}

// UpdateCurrentAccount overwrites the non-credential profile fields of the
// account belonging to the given login. The login is the authenticated
// caller's, passed explicitly. Unknown or anonymous logins are a silent no-op.
func (s *AccountService) UpdateCurrentAccount(ctx context.Context, login string, in ProfileInput) error {
	if login == "" || login == domain.AnonymousLogin {
		return nil
	}
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByLogin(ctx, login)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		account.FirstName = in.FirstName
		account.LastName = in.LastName
		account.Email = in.Email
		account.LangKey = in.LangKey
		account.ImageURL = in.ImageURL
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		log.Debug("updated account profile", "login", account.Login)
		return nil
	})
}

// UpdateAccount is the full administrative update: overwrites login, names,
// email, image, activated flag, language, and replaces the entire authority
// set with the resolvable subset of the requested names. Unknown ids yield nil
// with no store write.
func (s *AccountService) UpdateAccount(ctx context.Context, in AccountInput) (*AccountView, error) {
	log := slogx.FromContext(ctx)

	var view *AccountView
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByID(ctx, in.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		account.Login = strings.ToLower(in.Login)
		account.FirstName = in.FirstName
		account.LastName = in.LastName
		account.Email = in.Email
		account.ImageURL = in.ImageURL
		account.Activated = in.Activated
		account.LangKey = in.LangKey
		account.Authorities, err = resolveAuthorities(ctx, tx.Authorities(), in.Authorities)
		if err != nil {
			return err
		}
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}

		v := NewAccountView(account)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if view != nil {
		log.Debug("updated account", "login", view.Login)
	}
	return view, nil
}

// DeleteAccount removes the account with the given login; unknown logins are a
// silent no-op.
func (s *AccountService) DeleteAccount(ctx context.Context, login string) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByLogin(ctx, login)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Accounts().Delete(ctx, account.ID); err != nil {
			return err
		}
		log.Debug("deleted account", "login", account.Login)
		return nil
	})
}

// ChangePassword overwrites the password hash of the account belonging to the
// given login. Unknown logins are a silent no-op.
func (s *AccountService) ChangePassword(ctx context.Context, login, newPassword string) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByLogin(ctx, login)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		hash, err := s.hasher().Hash(newPassword)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		log.Debug("changed password", "login", account.Login)
		return nil
	})
}

// Authenticate verifies a login/password pair against the stored hash. Unknown
// logins, unactivated accounts, and wrong passwords all yield nil, in the same
// silent shape as the rest of the lifecycle.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*domain.Account, error) {
	account, err := s.Store.Accounts().GetByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !account.Activated {
		return nil, nil
	}
	if err := s.hasher().Verify(password, account.PasswordHash); err != nil {
		return nil, nil
	}
	return &account, nil
}

// ListManagedAccounts returns all accounts except the reserved anonymous
// login, as projected views in the store's natural order.
func (s *AccountService) ListManagedAccounts(ctx context.Context, page store.Page) ([]AccountView, error) {
	accounts, err := s.Store.Accounts().ListByLoginNot(ctx, domain.AnonymousLogin, page)
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, len(accounts))
	for i, a := range accounts {
		views[i] = NewAccountView(a)
	}
	return views, nil
}

// GetAccountByLogin is a pure lookup; unknown logins yield nil.
func (s *AccountService) GetAccountByLogin(ctx context.Context, login string) (*domain.Account, error) {
	account, err := s.Store.Accounts().GetByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByID is a pure lookup; unknown ids yield nil.
func (s *AccountService) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.Store.Accounts().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAuthorityNames returns the names of all known authorities.
func (s *AccountService) ListAuthorityNames(ctx context.Context) ([]string, error) {
	authorities, err := s.Store.Authorities().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(authorities))
	for i, a := range authorities {
		names[i] = a.Name
	}
	return names, nil
}

// resolveAuthorities maps requested authority names to the resolvable subset.
// Names the store does not know are dropped, never an error.
func resolveAuthorities(ctx context.Context, authorities store.Authorities, names []string) ([]string, error) {
	log := slogx.FromContext(ctx)

	var resolved []string
	for _, name := range names {
		authority, err := authorities.GetByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("dropping unresolvable authority", "name", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, authority.Name)
	}
	return resolved, nil
}
