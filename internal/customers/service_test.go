package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

func setupCustomersService(t *testing.T) Service {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT idx_customers_email UNIQUE (email)
);`
	require.NoError(t, db.Exec(ddl).Error)

	svc, err := NewService(NewRepository(db), logger.New(logger.Options{}))
	require.NoError(t, err)
	return svc
}

func TestCustomerCreateAndLookup(t *testing.T) {
	svc := setupCustomersService(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Rahim Traders",
		Email: "Rahim@Example.com",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "rahim@example.com", created.Email)

	byEmail, err := svc.GetByEmail(context.Background(), "RAHIM@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rahim Traders", byID.Name)
}

func TestCustomerDuplicateEmail(t *testing.T) {
	svc := setupCustomersService(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "One", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Two", Email: "dup@example.com"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCustomerUpdate(t *testing.T) {
	svc := setupCustomersService(t)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Old Name", Email: "update@example.com"})
	require.NoError(t, err)

	name := "New Name"
	phone := "555-0199"
	updated, err := svc.Update(context.Background(), UpdateInput{CustomerID: created.ID, Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "555-0199", updated.Phone)
}

func TestCustomerNotFound(t *testing.T) {
	svc := setupCustomersService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)
}
