package storefront_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	storefront "github.com/goliatone/go-storefront"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newTestDB opens a named in-memory sqlite database with the schema applied.
// A single connection keeps the shared cache alive for the test's duration.
func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, storefront.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedUser registers a user with a hashed password and returns the record.
func seedUser(t *testing.T, repo storefront.RepositoryManager, firstName, email, password string) *storefront.User {
	t.Helper()

	hash, err := storefront.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &storefront.User{
		FirstName:    firstName,
		Email:        email,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}
