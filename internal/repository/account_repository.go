package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// AccountRepository stores login identities.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Get(ctx context.Context, uid string) (*domain.Account, bool, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, bool, error)
}

type accountRepository struct {
	accounts collection[domain.Account]
}

// NewAccountRepository instantiates repository.
func NewAccountRepository(store DocumentStore) AccountRepository {
	return &accountRepository{accounts: collection[domain.Account]{store: store, name: CollectionAccounts}}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.UID == "" {
		account.UID = uuid.NewString()
	}
	account.Email = normalizeEmail(account.Email)
	return r.accounts.set(ctx, account.UID, *account)
}

func (r *accountRepository) Get(ctx context.Context, uid string) (*domain.Account, bool, error) {
	return r.accounts.get(ctx, uid)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, bool, error) {
	accounts, err := r.accounts.where(ctx, "email", normalizeEmail(email))
	if err != nil {
		return nil, false, err
	}
	if len(accounts) == 0 {
		return nil, false, nil
	}
	return &accounts[0], true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
