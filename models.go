package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. PasswordHash is serialized on purpose to keep
// the profile payload byte-compatible with the service this replaces; see
// DESIGN.md before "fixing" it.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"firstName,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Age           *int       `bun:"age" json:"age,omitempty"`
	Gender        string     `bun:"gender" json:"gender,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// Product belongs to exactly one user. CreatedByID is set at creation and
// never reassigned.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description,notnull" json:"description,omitempty"`
	Price         float64    `bun:"price,notnull" json:"price,omitempty"`
	CreatedByID   uuid.UUID  `bun:"created_by_id,notnull,type:uuid" json:"createdById,omitempty"`
	CreatedBy     *User      `bun:"rel:belongs-to,join:created_by_id=id" json:"createdBy,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// ProductOwner is the reduced owner view used on product listings.
type ProductOwner struct {
	ID        uuid.UUID `json:"id,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// ListView returns the product with its owner reduced to first name and email.
func (p *Product) ListView() *ProductView {
	view := &ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.CreatedBy != nil {
		view.CreatedBy = &ProductOwner{
			ID:        p.CreatedBy.ID,
			FirstName: p.CreatedBy.FirstName,
			Email:     p.CreatedBy.Email,
		}
	}

	return view
}

// ProductView is the listing payload: full product, reduced owner.
type ProductView struct {
	ID          uuid.UUID     `json:"id,omitempty"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Price       float64       `json:"price,omitempty"`
	CreatedBy   *ProductOwner `json:"createdBy,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}
