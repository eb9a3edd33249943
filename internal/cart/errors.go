package cart

import "errors"

// Sentinel errors returned by the engine and the persistence boundary.
// The service layer translates these into coded API errors.
var (
	// ErrProductNotFound means the catalog has no record for the product.
	ErrProductNotFound = errors.New("product not found")

	// ErrOutOfStock means the request cannot be satisfied even partially
	// because available stock is zero.
	ErrOutOfStock = errors.New("product out of stock")

	// ErrItemNotFound means the mutation targets a product that is not in
	// the cart and absence is an error for that operation.
	ErrItemNotFound = errors.New("item not in cart")

	// ErrInvalidQuantity means the requested quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least one")

	// ErrConflict means a versioned write lost a race against a concurrent
	// writer. The caller must re-read and retry the mutation.
	ErrConflict = errors.New("cart was modified concurrently")
)
