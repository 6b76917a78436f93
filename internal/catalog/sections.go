package catalog

import (
	"context"
	"fmt"
)

const (
	cardSourceStatic  = "static"
	cardSourceCatalog = "catalog"
)

// Card is one rendered product tile. Source distinguishes hand-authored
// cards from catalog-derived ones so re-renders never disturb static content.
type Card struct {
	ProductID  string `json:"productId,omitempty"`
	Title      string `json:"title"`
	PriceLabel string `json:"priceLabel,omitempty"`
	Display    string `json:"display,omitempty"`
	Featured   bool   `json:"featured,omitempty"`
	InStock    bool   `json:"inStock,omitempty"`
	Source     string `json:"source"`
}

// Container is one display section, optionally scoped to a single category.
// Static cards are owned by the caller and survive every render.
type Container struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Cards    []Card `json:"cards"`
}

// StaticCard builds a hand-authored card that renders will preserve.
func StaticCard(title, display string) Card {
	return Card{Title: title, Display: display, Source: cardSourceStatic}
}

// Renderer projects the catalog into display containers.
type Renderer struct {
	catalog Service
}

// NewRenderer wires a renderer to the catalog service.
func NewRenderer(catalog Service) (*Renderer, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &Renderer{catalog: catalog}, nil
}

// Render replaces each container's catalog-derived cards with the current
// snapshot, filtered by the container's category. Idempotent: repeated
// renders with an unchanged catalog leave the containers unchanged, and
// static cards are never removed or reordered relative to each other.
func (r *Renderer) Render(ctx context.Context, containers []*Container) error {
	for _, container := range containers {
		if container == nil {
			continue
		}
		products, err := r.catalog.List(ctx, container.Category)
		if err != nil {
			return err
		}

		kept := make([]Card, 0, len(container.Cards)+len(products))
		for _, card := range container.Cards {
			if card.Source != cardSourceCatalog {
				kept = append(kept, card)
			}
		}
		for _, p := range products {
			kept = append(kept, cardFor(p))
		}
		container.Cards = kept
	}
	return nil
}

func cardFor(p Product) Card {
	display := p.ImageURL
	if display == "" {
		display = p.Emoji
	}
	return Card{
		ProductID:  p.ID,
		Title:      p.Name,
		PriceLabel: "$" + p.Price.StringFixed(2),
		Display:    display,
		Featured:   p.Featured,
		InStock:    p.InStock,
		Source:     cardSourceCatalog,
	}
}
