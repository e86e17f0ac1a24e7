package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"webcourse/internal/common"
	"webcourse/internal/gormdb"
	"webcourse/internal/webutil"
)

// Store wraps the library database.
type Store struct {
	db *gorm.DB
}

// NewStore opens the database at dbPath, migrates the schema and seeds it
// with sample authors and books when empty.
func NewStore(dbPath string) (*Store, error) {
	db, err := gormdb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Author{}, &Book{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return gormdb.Close(s.db)
}

func ptr[T any](v T) *T { return &v }

func (s *Store) seed() error {
	var count int64
	if err := s.db.Model(&Author{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	authors := []Author{
		{Name: "Eric Matthes", City: ptr("USA"), Bio: ptr("Python educator")},
		{Name: "Miguel Grinberg", City: ptr("Canada"), Bio: ptr("Flask expert")},
		{Name: "Robert C. Martin", City: ptr("USA"), Bio: ptr("Clean Code author")},
	}
	if err := s.db.Create(&authors).Error; err != nil {
		return err
	}

	books := []Book{
		{Title: "Python Crash Course", AuthorID: authors[0].ID, Year: ptr(2019), ISBN: ptr("978-1593279288")},
		{Title: "Flask Web Development", AuthorID: authors[1].ID, Year: ptr(2018), ISBN: ptr("978-1491991732")},
		{Title: "Clean Code", AuthorID: authors[2].ID, Year: ptr(2008), ISBN: ptr("978-0132350884")},
	}
	return s.db.Create(&books).Error
}

// --- Authors ---

// ListAuthors returns one page of authors plus the total row count.
func (s *Store) ListAuthors(ctx context.Context, p webutil.ListParams) ([]Author, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Author{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	var authors []Author
	err := s.db.WithContext(ctx).
		Preload("Books").
		Order(p.OrderClause(authorColumns, "id")).
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, total, nil
}

// GetAuthor returns the author with the given id, books preloaded.
func (s *Store) GetAuthor(ctx context.Context, id uint) (*Author, error) {
	var a Author
	err := s.db.WithContext(ctx).Preload("Books").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return &a, nil
}

// CreateAuthor inserts a new author. A name collision yields ErrDuplicate.
func (s *Store) CreateAuthor(ctx context.Context, a *Author) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Author{}).Where("name = ?", a.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check author name: %w", err)
	}
	if count > 0 {
		return common.ErrDuplicate
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// UpdateAuthor persists the author's current field values.
func (s *Store) UpdateAuthor(ctx context.Context, a *Author) error {
	err := s.db.WithContext(ctx).Model(&Author{ID: a.ID}).
		Updates(map[string]any{"name": a.Name, "bio": a.Bio, "city": a.City}).Error
	if err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to update author: %w", err)
	}
	return nil
}

// DeleteAuthor removes an author; the foreign key cascade removes its books.
func (s *Store) DeleteAuthor(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Author{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete author: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SearchAuthors filters authors by case-insensitive substring on name and
// city; empty filters are skipped and provided ones are AND-composed.
func (s *Store) SearchAuthors(ctx context.Context, name, city string) ([]Author, error) {
	q := s.db.WithContext(ctx).Preload("Books")
	if name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if city != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}

	var authors []Author
	if err := q.Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to search authors: %w", err)
	}
	return authors, nil
}

// --- Books ---

// ListBooks returns one page of books plus the total row count.
func (s *Store) ListBooks(ctx context.Context, p webutil.ListParams) ([]Book, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []Book
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order(p.OrderClause(bookColumns, "id")).
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// GetBook returns the book with the given id, author preloaded.
func (s *Store) GetBook(ctx context.Context, id uint) (*Book, error) {
	var b Book
	err := s.db.WithContext(ctx).Preload("Author").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &b, nil
}

// CreateBook inserts a new book. The author must exist and the ISBN, when
// given, must be unused.
func (s *Store) CreateBook(ctx context.Context, b *Book) error {
	if err := s.checkAuthorExists(ctx, b.AuthorID); err != nil {
		return err
	}
	if err := s.checkISBNFree(ctx, b.ISBN, 0); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// UpdateBook persists the book's current field values.
func (s *Store) UpdateBook(ctx context.Context, b *Book) error {
	if err := s.checkAuthorExists(ctx, b.AuthorID); err != nil {
		return err
	}
	if err := s.checkISBNFree(ctx, b.ISBN, b.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&Book{ID: b.ID}).
		Updates(map[string]any{
			"title":     b.Title,
			"author_id": b.AuthorID,
			"year":      b.Year,
			"isbn":      b.ISBN,
		}).Error
	if err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// DeleteBook removes the book with the given id.
func (s *Store) DeleteBook(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Book{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SearchBooks filters books by case-insensitive substring on title and
// author name, and exact year; filters are AND-composed.
func (s *Store) SearchBooks(ctx context.Context, title, authorName string, year *int) ([]Book, error) {
	q := s.db.WithContext(ctx).Model(&Book{}).Preload("Author")
	if title != "" {
		q = q.Where("LOWER(books.title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if authorName != "" {
		q = q.Joins("JOIN authors ON authors.id = books.author_id").
			Where("LOWER(authors.name) LIKE ?", "%"+strings.ToLower(authorName)+"%")
	}
	if year != nil {
		q = q.Where("books.year = ?", *year)
	}

	var books []Book
	if err := q.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// --- helpers ---

func (s *Store) checkAuthorExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check author: %w", err)
	}
	if count == 0 {
		return common.ErrForeignKey
	}
	return nil
}

func (s *Store) checkISBNFree(ctx context.Context, isbn *string, exceptID uint) error {
	if isbn == nil || *isbn == "" {
		return nil
	}
	var count int64
	q := s.db.WithContext(ctx).Model(&Book{}).Where("isbn = ?", *isbn)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ISBN: %w", err)
	}
	if count > 0 {
		return common.ErrDuplicate
	}
	return nil
}
