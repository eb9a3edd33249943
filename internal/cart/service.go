package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/ethanhollis/cartwright-backend/pkg/errors"
	"github.com/ethanhollis/cartwright-backend/pkg/logger"
)

// Actor identifies the cart owner for a request: an authenticated user id,
// or a guest token when UserID is nil.
type Actor struct {
	UserID     uuid.UUID
	GuestToken string
}

// UserActor builds an actor for an authenticated user.
func UserActor(userID uuid.UUID) Actor {
	return Actor{UserID: userID}
}

// GuestActor builds an actor for an anonymous session.
func GuestActor(token string) Actor {
	return Actor{GuestToken: token}
}

// Service exposes cart operations. Every call returns the fully recomputed
// quote for the actor's cart.
type Service interface {
	GetCart(ctx context.Context, actor Actor) (*Quote, error)
	AddItem(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*Quote, error)
	UpdateQuantity(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*Quote, error)
	RemoveItem(ctx context.Context, actor Actor, productID uuid.UUID) (*Quote, error)
	Clear(ctx context.Context, actor Actor) (*Quote, error)
	MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*Quote, error)
}

type service struct {
	users   Store
	guests  Store
	catalog Catalog
	pricing PricingConfig
	log     *logger.Logger
}

// NewService builds a cart service backed by the provided stores.
func NewService(users, guests Store, catalog Catalog, pricing PricingConfig, log *logger.Logger) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user cart store required")
	}
	if guests == nil {
		return nil, fmt.Errorf("guest cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:   users,
		guests:  guests,
		catalog: catalog,
		pricing: pricing,
		log:     log,
	}, nil
}

// GetCart returns the current quote without mutating anything.
func (s *service) GetCart(ctx context.Context, actor Actor) (*Quote, error) {
	store, key, err := s.resolve(actor)
	if err != nil {
		return nil, err
	}
	cart, _, err := store.Load(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return BuildQuote(cart.Items, s.pricing), nil
}

// AddItem adds or increments a product line and returns the new quote.
func (s *service) AddItem(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*Quote, error) {
	return s.mutate(ctx, actor, func(cart *Cart) error {
		return cart.AddItem(ctx, s.catalog, productID, quantity)
	})
}

// UpdateQuantity sets an existing line's quantity and returns the new quote.
func (s *service) UpdateQuantity(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*Quote, error) {
	return s.mutate(ctx, actor, func(cart *Cart) error {
		return cart.UpdateQuantity(ctx, s.catalog, productID, quantity)
	})
}

// RemoveItem drops a line and returns the new quote.
func (s *service) RemoveItem(ctx context.Context, actor Actor, productID uuid.UUID) (*Quote, error) {
	return s.mutate(ctx, actor, func(cart *Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

// Clear empties the cart and returns the zeroed quote.
func (s *service) Clear(ctx context.Context, actor Actor) (*Quote, error) {
	return s.mutate(ctx, actor, func(cart *Cart) error {
		cart.Clear()
		return nil
	})
}

// MergeGuestCart folds the guest cart into the user's durable cart. The
// guest record is discarded only after the merged cart has been written; a
// catalog outage aborts with nothing persisted.
func (s *service) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*Quote, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if guestToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest token is required")
	}
	userKey := userID.String()

	guest, _, err := s.guests.Load(ctx, guestToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}
	server, version, err := s.users.Load(ctx, userKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user cart")
	}

	if len(guest.Items) == 0 {
		if err := s.guests.Delete(ctx, guestToken); err != nil {
			s.log.Warn(s.log.WithUserID(ctx, userKey), "discard empty guest cart failed")
		}
		return BuildQuote(server.Items, s.pricing), nil
	}

	merged, err := Merge(ctx, guest, server, s.catalog)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge carts")
	}

	if err := s.users.Save(ctx, userKey, merged, version); err != nil {
		return nil, s.translate(err, "save merged cart")
	}

	if err := s.guests.Delete(ctx, guestToken); err != nil {
		// The merge is durable; losing the delete only risks a stale
		// guest doc that the TTL will reap.
		s.log.Warn(s.log.WithUserID(ctx, userKey), "discard guest cart failed")
	}

	return BuildQuote(merged.Items, s.pricing), nil
}

func (s *service) mutate(ctx context.Context, actor Actor, fn func(cart *Cart) error) (*Quote, error) {
	store, key, err := s.resolve(actor)
	if err != nil {
		return nil, err
	}
	cart, version, err := store.Load(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := fn(cart); err != nil {
		return nil, s.translate(err, "apply cart mutation")
	}
	if err := store.Save(ctx, key, cart, version); err != nil {
		return nil, s.translate(err, "save cart")
	}
	return BuildQuote(cart.Items, s.pricing), nil
}

func (s *service) resolve(actor Actor) (Store, string, error) {
	if actor.UserID != uuid.Nil {
		return s.users, actor.UserID.String(), nil
	}
	if actor.GuestToken != "" {
		return s.guests, actor.GuestToken, nil
	}
	return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
}

// translate maps engine and store sentinels onto coded API errors. The
// sentinel stays in the chain so errors.Is keeps working upstream.
func (s *service) translate(err error, op string) error {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	case errors.Is(err, ErrItemNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not in cart")
	case errors.Is(err, ErrOutOfStock):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product out of stock")
	case errors.Is(err, ErrInvalidQuantity):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be at least one")
	case errors.Is(err, ErrConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified concurrently")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}
