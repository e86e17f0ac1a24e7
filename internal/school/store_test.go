package school

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
	store, err := NewStore(filepath.Join(t.TempDir(), "academy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedsOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "academy.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	require.NoError(t, err)

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 3)

	teachers, err := store.ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 4)

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 2)
	require.NoError(t, store.Close())

	// Reopening must not duplicate the sample data.
	store, err = NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	teachers, err = store.ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 4)
}

func TestCreateStudentValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		err := store.CreateStudent(ctx, &Student{
			Name:     "Copy Cat",
			Email:    "rahul@student.com", // seeded
			CourseID: courses[0].ID,
		})
		assert.ErrorIs(t, err, common.ErrDuplicate)
	})

	t.Run("missing course is rejected", func(t *testing.T) {
		err := store.CreateStudent(ctx, &Student{
			Name:     "Orphan",
			Email:    "orphan@student.com",
			CourseID: 9999,
		})
		assert.ErrorIs(t, err, common.ErrForeignKey)
	})

	t.Run("valid student is created", func(t *testing.T) {
		st := &Student{Name: "New Kid", Email: "newkid@student.com", CourseID: courses[1].ID}
		require.NoError(t, store.CreateStudent(ctx, st))
		assert.NotZero(t, st.ID)
	})
}

func TestTeacherCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)

	teacher := &Teacher{Name: "Dr. New", Email: "new@academy.com", CourseID: courses[0].ID}
	require.NoError(t, store.CreateTeacher(ctx, teacher))

	teacher.CourseID = courses[2].ID
	require.NoError(t, store.UpdateTeacher(ctx, teacher))

	got, err := store.GetTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, courses[2].ID, got.CourseID)
	assert.Equal(t, courses[2].Name, got.Course.Name)

	require.NoError(t, store.DeleteTeacher(ctx, teacher.ID))
	_, err = store.GetTeacher(ctx, teacher.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.UpdateTeacher(ctx, &Teacher{ID: 9999, Name: "X", Email: "x@x", CourseID: courses[0].ID})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCourseLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create with teacher reassignment", func(t *testing.T) {
		teachers, err := store.ListTeachers(ctx)
		require.NoError(t, err)
		teacher := teachers[0]

		course := &Course{Name: "Biology", Description: "Cells & Genetics"}
		require.NoError(t, store.CreateCourse(ctx, course, teacher.ID))

		got, err := store.GetTeacher(ctx, teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, course.ID, got.CourseID)
	})

	t.Run("delete refuses courses in use", func(t *testing.T) {
		courses, err := store.ListCourses(ctx)
		require.NoError(t, err)
		// Seeded Mathematics still has teachers and students.
		assert.ErrorIs(t, store.DeleteCourse(ctx, courses[0].ID), ErrCourseInUse)
	})

	t.Run("delete removes empty courses", func(t *testing.T) {
		course := &Course{Name: "Astronomy"}
		require.NoError(t, store.CreateCourse(ctx, course, 0))
		require.NoError(t, store.DeleteCourse(ctx, course.ID))
		_, err := store.GetCourse(ctx, course.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestListStudentsOrderAndJoins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)

	// Newest first, with course and its teachers resolved.
	assert.Greater(t, students[0].ID, students[1].ID)
	assert.NotEmpty(t, students[0].Course.Name)
	assert.NotEmpty(t, students[1].Course.Teachers)
}
