package roster

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcourse/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedsOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "students.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, len(seedStudents))
	require.NoError(t, store.Close())

	// Reopening must not seed again.
	store, err = NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	students, err = store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, len(seedStudents))
}

func TestStoreCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create populates id", func(t *testing.T) {
		st := &Student{Name: "Ada Lovelace", Email: "ada@example.com", Course: "Algorithms"}
		require.NoError(t, store.CreateStudent(ctx, st))
		assert.NotZero(t, st.ID)

		got, err := store.GetStudent(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", got.Name)
	})

	t.Run("update overwrites fields", func(t *testing.T) {
		st := &Student{Name: "Alan Turing", Email: "alan@example.com", Course: "Logic"}
		require.NoError(t, store.CreateStudent(ctx, st))

		st.Course = "Cryptography"
		require.NoError(t, store.UpdateStudent(ctx, st))

		got, err := store.GetStudent(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cryptography", got.Course)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		st := &Student{Name: "Grace Hopper", Email: "grace@example.com", Course: "Compilers"}
		require.NoError(t, store.CreateStudent(ctx, st))
		require.NoError(t, store.DeleteStudent(ctx, st.ID))

		_, err := store.GetStudent(ctx, st.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("missing ids yield ErrNotFound", func(t *testing.T) {
		_, err := store.GetStudent(ctx, 9999)
		assert.ErrorIs(t, err, common.ErrNotFound)

		err = store.UpdateStudent(ctx, &Student{ID: 9999, Name: "X", Email: "x@x", Course: "Y"})
		assert.ErrorIs(t, err, common.ErrNotFound)

		assert.ErrorIs(t, store.DeleteStudent(ctx, 9999), common.ErrNotFound)
	})
}
