package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/internal/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fixture struct {
	db    *sql.DB
	users *store.UserRepository
	items *store.ItemRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{
		db:    testdb.Open(t),
		users: store.NewUserRepository(testdb.Dialect(), nil),
		items: store.NewItemRepository(testdb.Dialect(), nil),
	}
}

func (f fixture) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	fields := domain.UserCreate{Email: email}.Fields()
	fields["hashed_password"] = "hash:" + email
	u, err := f.users.CreateFields(context.Background(), f.db, fields)
	require.NoError(t, err)
	return u
}

func (f fixture) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRepository_CreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input domain.UserCreate
		check func(t *testing.T, u *domain.User)
	}{
		{
			name:  "storage defaults",
			input: domain.UserCreate{Email: "defaults@example.com"},
			check: func(t *testing.T, u *domain.User) {
				assert.True(t, u.IsActive)
				assert.False(t, u.IsSuperuser)
				assert.Nil(t, u.FullName)
			},
		},
		{
			name: "explicit values",
			input: domain.UserCreate{
				Email:       "Explicit@Example.com",
				FullName:    strPtr("Ada Lovelace"),
				IsActive:    boolPtr(false),
				IsSuperuser: boolPtr(true),
			},
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "explicit@example.com", u.Email)
				require.NotNil(t, u.FullName)
				assert.Equal(t, "Ada Lovelace", *u.FullName)
				assert.False(t, u.IsActive)
				assert.True(t, u.IsSuperuser)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := tc.input.Fields()
			fields["hashed_password"] = "secret-hash"

			created, err := f.users.CreateFields(ctx, f.db, fields)
			require.NoError(t, err)
			require.NotZero(t, created.ID)
			tc.check(t, created)

			fetched, err := f.users.Get(ctx, f.db, created.ID)
			require.NoError(t, err)
			require.NotNil(t, fetched)
			assert.Equal(t, created, fetched)
			assert.Equal(t, "secret-hash", fetched.HashedPassword)
		})
	}
}

func TestRepository_CreateFromInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")

	item, err := f.items.CreateWithOwner(ctx, f.db, domain.ItemCreate{
		Title:       "lamp",
		Description: strPtr("brass"),
		Price:       decPtr("12.50"),
	}, owner.ID)
	require.NoError(t, err)

	got, err := f.items.Get(ctx, f.db, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "lamp", got.Title)
	assert.Equal(t, "brass", *got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")), "price %s", got.Price)
	assert.Equal(t, owner.ID, got.OwnerID)
}

func TestRepository_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "dup@example.com")

	fields := domain.UserCreate{Email: "DUP@example.com"}.Fields()
	fields["hashed_password"] = "x"
	_, err := f.users.CreateFields(context.Background(), f.db, fields)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	var serr *store.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "user", serr.Entity)
	assert.Equal(t, "create", serr.Operation)
	assert.Equal(t, 1, f.countRows(t, "users"))
}

func TestRepository_CreateMissingRequiredColumn(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Create(context.Background(), f.db, domain.UserCreate{Email: "nohash@example.com"})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Zero(t, f.countRows(t, "users"))
}

func TestRepository_GetMissing(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Get(context.Background(), f.db, 4242)

	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestRepository_GetMultiPartitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var want []int64
	for i := range 7 {
		u := f.createUser(t, fmt.Sprintf("user%d@example.com", i))
		want = append(want, u.ID)
	}

	for _, limit := range []int{1, 2, 3, 7, 10} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			var got []int64
			for skip := 0; skip < len(want)+limit; skip += limit {
				page, err := f.users.GetMulti(ctx, f.db, store.Page{Skip: skip, Limit: limit})
				require.NoError(t, err)
				assert.LessOrEqual(t, len(page), limit)
				for _, u := range page {
					got = append(got, u.ID)
				}
			}
			assert.Equal(t, want, got, "pages must cover the collection in order without gaps or duplicates")
		})
	}
}

func TestRepository_GetMultiBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "a@example.com")
	f.createUser(t, "b@example.com")

	t.Run("zero limit", func(t *testing.T) {
		users, err := f.users.GetMulti(ctx, f.db, store.Page{Limit: 0})
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("skip past end", func(t *testing.T) {
		users, err := f.users.GetMulti(ctx, f.db, store.Page{Skip: 10, Limit: 5})
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("short final page", func(t *testing.T) {
		users, err := f.users.GetMulti(ctx, f.db, store.Page{Skip: 1, Limit: 5})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("default page", func(t *testing.T) {
		users, err := f.users.GetMulti(ctx, f.db, store.DefaultPage)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	for _, page := range []store.Page{{Skip: -1, Limit: 1}, {Skip: 0, Limit: -1}} {
		t.Run(fmt.Sprintf("invalid %+v", page), func(t *testing.T) {
			_, err := f.users.GetMulti(ctx, f.db, page)
			assert.ErrorIs(t, err, store.ErrInvalidPage)
		})
	}
}

func TestRepository_UpdateChangesOnlyPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")

	original, err := f.items.CreateWithOwner(ctx, f.db, domain.ItemCreate{
		Title:       "desk",
		Description: strPtr("oak"),
		Price:       decPtr("10"),
	}, owner.ID)
	require.NoError(t, err)
	snapshot := *original

	tests := []struct {
		name   string
		input  domain.ItemUpdate
		expect func(before domain.Item) domain.Item
	}{
		{
			name:  "absent fields leave entity unchanged",
			input: domain.ItemUpdate{},
			expect: func(before domain.Item) domain.Item {
				return before
			},
		},
		{
			name:  "title only",
			input: domain.ItemUpdate{Title: domain.Some("chair")},
			expect: func(before domain.Item) domain.Item {
				before.Title = "chair"
				return before
			},
		},
		{
			name:  "explicit null clears description",
			input: domain.ItemUpdate{Description: domain.Some[*string](nil)},
			expect: func(before domain.Item) domain.Item {
				before.Description = nil
				return before
			},
		},
		{
			name:  "price",
			input: domain.ItemUpdate{Price: domain.Some(decimal.RequireFromString("3.25"))},
			expect: func(before domain.Item) domain.Item {
				before.Price = decimal.RequireFromString("3.25")
				return before
			},
		},
	}

	current := snapshot
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := current
			want := tc.expect(current)

			got, err := f.items.Update(ctx, f.db, &target, tc.input)
			require.NoError(t, err)
			assert.Same(t, &target, got)
			assertItemEqual(t, want, *got)

			stored, err := f.items.Get(ctx, f.db, current.ID)
			require.NoError(t, err)
			assertItemEqual(t, want, *stored)
			current = *stored
		})
	}
}

func TestRepository_UpdateIgnoresUnknownAndImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")
	other := f.createUser(t, "other@example.com")

	item, err := f.items.CreateWithOwner(ctx, f.db, domain.ItemCreate{Title: "desk"}, owner.ID)
	require.NoError(t, err)
	originalID := item.ID

	got, err := f.items.UpdateFields(ctx, f.db, item, domain.Fields{
		"id":         int64(999),
		"owner_id":   other.ID,
		"color":      "red",
		"title":      "table",
		"created_by": "nobody",
	})
	require.NoError(t, err)
	assert.Equal(t, originalID, got.ID)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, "table", got.Title)
}

func TestRepository_UpdateFailureLeavesTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "taken@example.com")
	u := f.createUser(t, "mine@example.com")
	before := *u

	_, err := f.users.Update(ctx, f.db, u, domain.UserUpdate{
		Email:    domain.Some("taken@example.com"),
		FullName: domain.Some(strPtr("Changed")),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Equal(t, before, *u, "target must not change when the write fails")

	stored, err := f.users.Get(ctx, f.db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before, *stored)
}

func TestRepository_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	ghost := &domain.User{ID: 777, Email: "ghost@example.com"}

	_, err := f.users.Update(context.Background(), f.db, ghost, domain.UserUpdate{FullName: domain.Some(strPtr("x"))})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.users.UpdateFields(context.Background(), f.db, nil, domain.Fields{})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestRepository_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "gone@example.com")
	f.createUser(t, "stays@example.com")

	removed, err := f.users.Remove(ctx, f.db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, removed, "remove returns the entity as it was before deletion")

	got, err := f.users.Get(ctx, f.db, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, f.countRows(t, "users"))
}

func TestRepository_RemoveMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "a@example.com")
	f.createUser(t, "b@example.com")

	for _, id := range []int64{0, -1, 404} {
		t.Run(fmt.Sprint(id), func(t *testing.T) {
			removed, err := f.users.Remove(ctx, f.db, id)

			assert.Nil(t, removed)
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.True(t, store.IsNotFoundError(err))
			assert.Equal(t, 2, f.countRows(t, "users"), "remove of a missing id must not mutate storage")
		})
	}
}

func TestRepository_RemoveCascadesOwnedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")
	_, err := f.items.CreateWithOwner(ctx, f.db, domain.ItemCreate{Title: "desk"}, owner.ID)
	require.NoError(t, err)

	_, err = f.users.Remove(ctx, f.db, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, f.countRows(t, "items"))
}

func TestRepository_GetByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "case@example.com")

	got, err := f.users.GetByEmail(ctx, f.db, "  CASE@example.com ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := f.users.GetByEmail(ctx, f.db, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_ParticipatesInCallerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	fields := domain.UserCreate{Email: "tx@example.com"}.Fields()
	fields["hashed_password"] = "x"
	u, err := f.users.CreateFields(ctx, tx, fields)
	require.NoError(t, err)

	got, err := f.users.Get(ctx, tx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "the caller's transaction sees its own write")

	require.NoError(t, tx.Rollback())
	assert.Zero(t, f.countRows(t, "users"), "rolling back the caller's transaction discards the write")
}

func TestRepository_WithTx(t *testing.T) {
	f := newFixture(t)

	testdb.WithTx(t, f.db, func(t *testing.T, tx *sql.Tx) {
		fields := domain.UserCreate{Email: "scoped@example.com"}.Fields()
		fields["hashed_password"] = "x"
		_, err := f.users.CreateFields(context.Background(), tx, fields)
		require.NoError(t, err)
	})

	assert.Zero(t, f.countRows(t, "users"))
}

func assertItemEqual(t *testing.T, want, got domain.Item) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.True(t, want.Price.Equal(got.Price), "price: want %s, got %s", want.Price, got.Price)
	assert.Equal(t, want.OwnerID, got.OwnerID)
}
