package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
)

// Product is one admin-managed catalog entry. ID is immutable after creation
// and is the merge key between the local and remote catalogs.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Emoji       string          `json:"emoji,omitempty"`
	Featured    bool            `json:"featured"`
	InStock     bool            `json:"inStock"`
	Sizes       []string        `json:"sizes,omitempty"`
	Scents      []string        `json:"scents,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CreatedBy   string          `json:"createdBy,omitempty"`
}

// Patch carries partial updates for an existing product. Nil fields leave the
// current value untouched; an empty ImageURL never clears an existing one.
type Patch struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	Emoji       *string          `json:"emoji,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
	InStock     *bool            `json:"inStock,omitempty"`
	Sizes       []string         `json:"sizes,omitempty"`
	Scents      []string         `json:"scents,omitempty"`
	Colors      []string         `json:"colors,omitempty"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NewProductID derives a collision-resistant id from the product name, the
// creation time, and a random suffix. Not cryptographically unique.
func NewProductID(name string, now time.Time) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "product"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", slug, now.UnixMilli(), suffix)
}

// Validate gates product creation. All checks run before any state mutation.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !p.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be greater than zero")
	}
	if strings.TrimSpace(p.ImageURL) == "" && strings.TrimSpace(p.Emoji) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product needs an image or a fallback emoji")
	}
	return nil
}

// applyPatch merges the patch over the existing record. ImageURL is preserved
// when the patch does not supply a replacement.
func (p Product) applyPatch(patch Patch, now time.Time) Product {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ImageURL != nil && strings.TrimSpace(*patch.ImageURL) != "" {
		p.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Emoji != nil {
		p.Emoji = *patch.Emoji
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.Sizes != nil {
		p.Sizes = patch.Sizes
	}
	if patch.Scents != nil {
		p.Scents = patch.Scents
	}
	if patch.Colors != nil {
		p.Colors = patch.Colors
	}
	p.UpdatedAt = now
	return p
}
