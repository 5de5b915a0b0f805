package payments

import (
	"context"
	"errors"
)

// ErrDeclined is returned when the processor refuses a charge outright, as
// opposed to transport or configuration errors.
var ErrDeclined = errors.New("payment declined")

type ChargeResult struct {
	ChargeRef string
}

// Processor is the external payment service. Charge captures the amount
// synchronously against the client's stored payment method; Refund returns
// amountCents to the original charge. Settlement is entirely the
// processor's concern.
type Processor interface {
	Charge(ctx context.Context, amountCents int64, methodRef string, metadata map[string]any) (*ChargeResult, error)
	Refund(ctx context.Context, chargeRef string, amountCents int64) error
}
