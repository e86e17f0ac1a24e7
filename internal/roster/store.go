// Package roster implements the student roster app: a flat students table
// driven by raw parameterized SQL, no ORM.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"webcourse/internal/common"
)

// Student is one row of the students table.
type Student struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Email  string `db:"email"`
	Course string `db:"course"`
}

const schema = `
CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    course TEXT NOT NULL
);
`

var seedStudents = []Student{
	{Name: "Jane Doe", Email: "jane@example.com", Course: "Python"},
	{Name: "Rahul Kumar", Email: "rahul@example.com", Course: "Go"},
	{Name: "Priya Singh", Email: "priya@example.com", Course: "Databases"},
}

// Store wraps the roster database.
type Store struct {
	db *sqlx.DB
}

// NewStore opens (creating if necessary) the database at dbPath, ensures the
// students table exists, and seeds it with sample rows when empty.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create students table: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed students: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students"); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, st := range seedStudents {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO students (name, email, course) VALUES (?, ?, ?)",
			st.Name, st.Email, st.Course,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListStudents returns all students in id order.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	err := s.db.SelectContext(ctx, &students,
		"SELECT id, name, email, course FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// GetStudent returns the student with the given id.
func (s *Store) GetStudent(ctx context.Context, id int64) (*Student, error) {
	var st Student
	err := s.db.GetContext(ctx, &st,
		"SELECT id, name, email, course FROM students WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &st, nil
}

// CreateStudent inserts a new student and populates its ID.
func (s *Store) CreateStudent(ctx context.Context, st *Student) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO students (name, email, course) VALUES (?, ?, ?)",
		st.Name, st.Email, st.Course)
	if err != nil {
		return fmt.Errorf("failed to insert student: %w", err)
	}
	st.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	return nil
}

// UpdateStudent overwrites the student with the given id.
func (s *Store) UpdateStudent(ctx context.Context, st *Student) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE students SET name = ?, email = ?, course = ? WHERE id = ?",
		st.Name, st.Email, st.Course, st.ID)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return checkAffected(res)
}

// DeleteStudent removes the student with the given id.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
