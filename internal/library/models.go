// Package library implements the library catalog JSON API: authors and
// books with pagination, sorting, search, and a cascade from author to
// books, backed by GORM.
package library

import "time"

// Author of one or more books. Deleting an author deletes its books.
type Author struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:100;not null;uniqueIndex"`
	Bio       *string `gorm:"type:text"`
	City      *string `gorm:"size:50"`
	CreatedAt time.Time
	Books     []Book `gorm:"constraint:OnDelete:CASCADE"`
}

// Book belongs to exactly one author. ISBN is unique when present.
type Book struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	AuthorID  uint   `gorm:"not null"`
	Author    Author
	Year      *int
	ISBN      *string `gorm:"size:20;uniqueIndex"`
	CreatedAt time.Time
}

// Sortable columns, matched against the sort query parameter. Anything
// else falls back to id order.
var (
	authorColumns = []string{"id", "name", "bio", "city", "created_at"}
	bookColumns   = []string{"id", "title", "author_id", "year", "isbn", "created_at"}
)

// authorJSON is the wire representation of an Author, including the
// computed book count.
type authorJSON struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio"`
	City      *string   `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	BookCount int       `json:"book_count"`
}

func (a *Author) toJSON() authorJSON {
	return authorJSON{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		City:      a.City,
		CreatedAt: a.CreatedAt,
		BookCount: len(a.Books),
	}
}

// bookJSON is the wire representation of a Book, including the author's
// name resolved from the relation.
type bookJSON struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Year       *int      `json:"year"`
	ISBN       *string   `json:"isbn"`
	CreatedAt  time.Time `json:"created_at"`
}

func (b *Book) toJSON() bookJSON {
	return bookJSON{
		ID:         b.ID,
		Title:      b.Title,
		AuthorID:   b.AuthorID,
		AuthorName: b.Author.Name,
		Year:       b.Year,
		ISBN:       b.ISBN,
		CreatedAt:  b.CreatedAt,
	}
}

func authorsToJSON(authors []Author) []authorJSON {
	out := make([]authorJSON, len(authors))
	for i := range authors {
		out[i] = authors[i].toJSON()
	}
	return out
}

func booksToJSON(books []Book) []bookJSON {
	out := make([]bookJSON, len(books))
	for i := range books {
		out[i] = books[i].toJSON()
	}
	return out
}
