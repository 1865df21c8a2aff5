package service

import (
	"github.com/croftbay/accounts/internal/accounts/domain"
	"github.com/croftbay/accounts/pkg/jwtx"
)

// TokenService mints bearer tokens for authenticated accounts.
type TokenService struct {
	Signer jwtx.Signer
}

// IssueToken returns a signed token carrying the account's login and
// authorities.
func (s *TokenService) IssueToken(account domain.Account) (string, error) {
	return s.Signer.Sign(account.Login, account.Authorities)
}
