// Package inventory implements the product inventory app: a flat products
// table with name search and quantity/value totals computed on read.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"webcourse/internal/common"
	"webcourse/internal/gormdb"
)

// Product is one item in stock.
type Product struct {
	ID       uint    `gorm:"primaryKey"`
	Name     string  `gorm:"size:100;not null"`
	Quantity int     `gorm:"default:0"`
	Price    float64 `gorm:"not null"`
}

// Store wraps the inventory database.
type Store struct {
	db *gorm.DB
}

// NewStore opens the database at dbPath, migrates the schema and seeds it
// with sample products when empty.
func NewStore(dbPath string) (*Store, error) {
	db, err := gormdb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Product{}); err != nil {
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

func (s *Store) seed() error {
	var count int64
	if err := s.db.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	products := []Product{
		{Name: "Apple iPhone 14", Quantity: 10, Price: 999.99},
		{Name: "Samsung Galaxy S23", Quantity: 8, Price: 899.99},
		{Name: "Dell XPS 13 Laptop", Quantity: 5, Price: 1199.99},
		{Name: "Sony WH-1000XM5 Headphones", Quantity: 15, Price: 349.99},
		{Name: "Logitech MX Master 3 Mouse", Quantity: 20, Price: 99.99},
	}
	return s.db.Create(&products).Error
}

// ListProducts returns all products, or only those whose name contains the
// search string (case-insensitive) when search is non-empty.
func (s *Store) ListProducts(ctx context.Context, search string) ([]Product, error) {
	q := s.db.WithContext(ctx)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var products []Product
	if err := q.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a new product and populates its ID.
func (s *Store) CreateProduct(ctx context.Context, p *Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the product with the given id.
func (s *Store) UpdateProduct(ctx context.Context, p *Product) error {
	if _, err := s.GetProduct(ctx, p.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&Product{ID: p.ID}).
		Updates(map[string]any{"name": p.Name, "quantity": p.Quantity, "price": p.Price}).Error
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// DeleteProduct removes the product with the given id.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Totals sums the quantity and the stock value (quantity times price) of
// the given products.
func Totals(products []Product) (quantity int, value float64) {
	for _, p := range products {
		quantity += p.Quantity
		value += float64(p.Quantity) * p.Price
	}
	return quantity, value
}
