package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

const productColumns = `id, title, description, image_data, image_base64, image_mimetype,
		image_filename, price, cost, created_at, updated_at`

// listColumns leave the image payload out; listings link to the image endpoint.
const listColumns = `id, title, description, image_mimetype, image_filename,
		price, cost, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ImageData,
		&p.ImageBase64,
		&p.ImageMimeType,
		&p.ImageFilename,
		&p.Price,
		&p.Cost,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// GetProductsByIDs returns the products that exist among ids, ordered by id.
// Unknown ids are silently absent from the result.
func (r *Repository) GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + listColumns + ` FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.ImageMimeType,
			&p.ImageFilename,
			&p.Price,
			&p.Cost,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// CreateProduct inserts p and fills in its id and timestamps.
func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO products (title, description, image_data, image_base64, image_mimetype,
			image_filename, price, cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return r.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, query,
			p.Title,
			p.Description,
			p.ImageData,
			p.ImageBase64,
			p.ImageMimeType,
			p.ImageFilename,
			p.Price.StringFixed(2),
			p.Cost.StringFixed(2),
			now,
			now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return nil
	})
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	query := `
		UPDATE products
		SET title = $1, description = $2, image_data = $3, image_base64 = $4,
			image_mimetype = $5, image_filename = $6, price = $7, cost = $8, updated_at = $9
		WHERE id = $10`

	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			p.Title,
			p.Description,
			p.ImageData,
			p.ImageBase64,
			p.ImageMimeType,
			p.ImageFilename,
			p.Price.StringFixed(2),
			p.Cost.StringFixed(2),
			now,
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if err := expectOneRow(res, p.ID); err != nil {
			return err
		}
		p.UpdatedAt = now
		return nil
	})
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return expectOneRow(res, id)
	})
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
