package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/apperror"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubSupplierRepo answers the duplicate probes from fixed sets and
// records whether Create was reached.
type stubSupplierRepo struct {
	Repository

	names    map[string]bool
	emails   map[string]bool
	phones   map[string]bool
	accounts map[string]bool

	created []*Supplier
}

func (r *stubSupplierRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	return r.names[name], nil
}

func (r *stubSupplierRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.emails[email], nil
}

func (r *stubSupplierRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.phones[phone], nil
}

func (r *stubSupplierRepo) ExistsByAccountNumber(_ context.Context, acct string) (bool, error) {
	return r.accounts[acct], nil
}

func (r *stubSupplierRepo) Create(_ context.Context, s *Supplier) error {
	r.created = append(r.created, s)
	return nil
}

func newStubRepo() *stubSupplierRepo {
	return &stubSupplierRepo{
		names:    map[string]bool{},
		emails:   map[string]bool{},
		phones:   map[string]bool{},
		accounts: map[string]bool{},
	}
}

func strPtr(s string) *string { return &s }

func TestCreate_RejectsDuplicateName(t *testing.T) {
	repo := newStubRepo()
	repo.names["Acme Foods"] = true
	svc := NewService(repo, passthroughTx{})

	err := svc.Create(context.Background(), New("Acme Foods"))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.Equal(t, "name", appErr.Details["field"])
	assert.Empty(t, repo.created)
}

func TestCreate_RejectsDuplicateContactFields(t *testing.T) {
	tests := []struct {
		field string
		setup func(repo *stubSupplierRepo, s *Supplier)
	}{
		{
			field: "email",
			setup: func(repo *stubSupplierRepo, s *Supplier) {
				s.Email = strPtr("orders@acme.test")
				repo.emails["orders@acme.test"] = true
			},
		},
		{
			field: "phone",
			setup: func(repo *stubSupplierRepo, s *Supplier) {
				s.Phone = strPtr("0700000001")
				repo.phones["0700000001"] = true
			},
		},
		{
			field: "account_number",
			setup: func(repo *stubSupplierRepo, s *Supplier) {
				s.AccountNumber = strPtr("110022003300")
				repo.accounts["110022003300"] = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			repo := newStubRepo()
			sup := New("Fresh Supplier")
			tt.setup(repo, sup)
			svc := NewService(repo, passthroughTx{})

			err := svc.Create(context.Background(), sup)

			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreate_SkipsUnsetOptionalFields(t *testing.T) {
	// nil email/phone/account must not trip the duplicate probes
	repo := newStubRepo()
	svc := NewService(repo, passthroughTx{})

	err := svc.Create(context.Background(), New("Nairobi Grains"))

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Nairobi Grains", repo.created[0].Name)
}
