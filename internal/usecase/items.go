package usecase

import (
	"context"

	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

// Items exposes read access to a user's saved items.
type Items struct {
	store ports.ItemStore
}

// NewItems constructs the item query use case.
func NewItems(store ports.ItemStore) *Items {
	return &Items{store: store}
}

// List returns the user's items, newest first.
func (i *Items) List(ctx context.Context, userID string) ([]domain.SavedItem, error) {
	return i.store.FindMany(ctx, userID)
}

// Get returns one item or domain.ErrItemNotFound.
func (i *Items) Get(ctx context.Context, userID, id string) (domain.SavedItem, error) {
	return i.store.FindOne(ctx, id, userID)
}
