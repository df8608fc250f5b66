package order

import (
	"fmt"

	"crabor/internal/pkg/errs"
)

// PaymentMethod identifies how the customer pays for the order.
type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentMomo       PaymentMethod = "momo"
	PaymentBanking    PaymentMethod = "banking"
	PaymentWallet     PaymentMethod = "wallet"
	PaymentCreditCard PaymentMethod = "credit_card"
)

// Validate checks the payment method against the supported set.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCOD, PaymentMomo, PaymentBanking, PaymentWallet, PaymentCreditCard:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod",
			fmt.Errorf("%q is not a supported payment method", string(m)))
	}
}

// PaymentStatus tracks the settlement state of the order payment.
// It moves independently of the order status except that delivery marks a
// cash-on-delivery order as paid.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefundedState PaymentStatus = "refunded"
)

// Validate checks the payment status against the supported set.
func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefundedState:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus",
			fmt.Errorf("%q is not a supported payment status", string(s)))
	}
}

// DeliveryType distinguishes standard, express, and scheduled deliveries.
type DeliveryType string

const (
	DeliveryStandard  DeliveryType = "standard"
	DeliveryExpress   DeliveryType = "express"
	DeliveryScheduled DeliveryType = "scheduled"
)

// Validate checks the delivery type against the supported set.
func (d DeliveryType) Validate() error {
	switch d {
	case DeliveryStandard, DeliveryExpress, DeliveryScheduled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("deliveryType",
			fmt.Errorf("%q is not a supported delivery type", string(d)))
	}
}
