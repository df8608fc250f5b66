package order

import (
	"errors"
	"fmt"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when an Item was not created through
// the NewItem constructor.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is a single order line: a product reference, the quantity ordered,
// and the unit price at ordering time. Prices are integer amounts in the
// smallest currency unit (VND has no subunit).
type Item struct { //nolint:recvcheck //using for validation
	productID    kernel.UUID
	name         string
	quantity     int
	unitPrice    int64
	instructions string

	guard guard.ConstructorGuard
}

// NewItem creates an order line with validation. Quantity must be at least 1
// and unit price must not be negative.
func NewItem(productID kernel.UUID, name string, quantity int, unitPrice int64, instructions string) (Item, error) {
	item := Item{
		name:         name,
		instructions: instructions,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setProductID(productID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate ensures the Item was created through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// ProductID returns the referenced product identifier.
func (i Item) ProductID() kernel.UUID {
	return i.productID
}

// Name returns the product name captured at ordering time.
func (i Item) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the per-unit price at ordering time.
func (i Item) UnitPrice() int64 {
	return i.unitPrice
}

// Instructions returns the free-text line instructions, if any.
func (i Item) Instructions() string {
	return i.instructions
}

// LineTotal returns quantity × unit price.
func (i Item) LineTotal() int64 {
	return int64(i.quantity) * i.unitPrice
}

func (i *Item) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	i.productID = productID
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(unitPrice int64) error {
	if unitPrice < 0 {
		return errs.NewValueIsInvalidErrorWithCause("unitPrice",
			fmt.Errorf("%d is negative", unitPrice))
	}
	i.unitPrice = unitPrice
	return nil
}
