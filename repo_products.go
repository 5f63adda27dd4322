package storefront

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the product store. Reads expand the owning user so handlers can
// render or check ownership without a second lookup.
type Products interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type products struct {
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	return &products{db: db}
}

func (r *products) Create(ctx context.Context, product *Product) (*Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if product.CreatedAt == nil {
		now := time.Now()
		product.CreatedAt = &now
	}

	_, err := r.db.NewInsert().
		Model(product).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create product")
	}

	return product, nil
}

func (r *products) FindAll(ctx context.Context) ([]*Product, error) {
	var records []*Product

	err := r.db.NewSelect().
		Model(&records).
		Relation("CreatedBy").
		Order("prd.created_at ASC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*Product{}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list products")
	}

	return records, nil
}

func (r *products) FindByID(ctx context.Context, id string) (*Product, error) {
	// A non-uuid path segment can never match a record; report it the same
	// way as a miss.
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	record := &Product{}
	err = r.db.NewSelect().
		Model(record).
		Relation("CreatedBy").
		Where("prd.id = ?", productID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load product")
	}

	return record, nil
}

func (r *products) Update(ctx context.Context, product *Product) (*Product, error) {
	now := time.Now()
	product.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(product).
		Column("name", "description", "price", "updated_at").
		Where("id = ?", product.ID).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update product")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrProductNotFound
	}

	return product, nil
}

func (r *products) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete product")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrProductNotFound
	}

	return nil
}
