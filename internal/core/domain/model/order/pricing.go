package order

import (
	"errors"
	"fmt"

	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

// PricingTolerance is the maximum rounding drift, in currency units, allowed
// between the stored total and the recomputed breakdown sum.
const PricingTolerance = 1

// ErrPricingIsNotConstructed is returned when a Pricing was not created
// through one of its constructors.
var ErrPricingIsNotConstructed = errors.New("Pricing must be created via NewPricing or RestorePricing")

// Pricing is the monetary breakdown of an order. It maintains the invariant
//
//	total == subtotal + deliveryFee + tax + serviceFee − discount
//
// within PricingTolerance at all times. Amounts are integer currency units.
type Pricing struct { //nolint:recvcheck //using for validation
	subtotal    int64
	deliveryFee int64
	discount    int64
	tax         int64
	serviceFee  int64
	total       int64

	guard guard.ConstructorGuard
}

// NewPricing builds a breakdown from its components and computes the total.
// All components must be non-negative.
func NewPricing(subtotal, deliveryFee, discount, tax, serviceFee int64) (Pricing, error) {
	p := Pricing{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		nonNegative("subtotal", subtotal),
		nonNegative("deliveryFee", deliveryFee),
		nonNegative("discount", discount),
		nonNegative("tax", tax),
		nonNegative("serviceFee", serviceFee),
	); err != nil {
		return Pricing{}, err
	}

	p.subtotal = subtotal
	p.deliveryFee = deliveryFee
	p.discount = discount
	p.tax = tax
	p.serviceFee = serviceFee
	p.total = subtotal + deliveryFee + tax + serviceFee - discount

	if p.total < 0 {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("discount %d exceeds the order value", discount))
	}

	return p, nil
}

// RestorePricing rebuilds a breakdown from persistence, verifying the total
// invariant instead of recomputing it. A stored total that drifted more than
// PricingTolerance from the component sum indicates corrupted data.
func RestorePricing(subtotal, deliveryFee, discount, tax, serviceFee, total int64) (Pricing, error) {
	p := Pricing{
		subtotal:    subtotal,
		deliveryFee: deliveryFee,
		discount:    discount,
		tax:         tax,
		serviceFee:  serviceFee,
		total:       total,
		guard:       guard.NewConstructorGuard(),
	}

	expected := subtotal + deliveryFee + tax + serviceFee - discount
	if diff := total - expected; diff > PricingTolerance || diff < -PricingTolerance {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("stored total %d does not match breakdown sum %d", total, expected))
	}

	return p, nil
}

// Validate ensures the Pricing was created through a constructor.
func (p Pricing) Validate() error {
	return p.guard.Validate(ErrPricingIsNotConstructed)
}

// Subtotal returns the sum of line totals.
func (p Pricing) Subtotal() int64 { return p.subtotal }

// DeliveryFee returns the estimated delivery fee.
func (p Pricing) DeliveryFee() int64 { return p.deliveryFee }

// Discount returns the applied discount.
func (p Pricing) Discount() int64 { return p.discount }

// Tax returns the tax amount.
func (p Pricing) Tax() int64 { return p.tax }

// ServiceFee returns the platform service fee.
func (p Pricing) ServiceFee() int64 { return p.serviceFee }

// Total returns the amount the customer pays.
func (p Pricing) Total() int64 { return p.total }

func nonNegative(name string, value int64) error {
	if value < 0 {
		return errs.NewValueIsInvalidErrorWithCause(name,
			fmt.Errorf("%d is negative", value))
	}
	return nil
}
