package payments

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseProcessor charges and refunds through Omise. Amounts are cents
// (satang) end to end, matching Omise's smallest-unit convention.
type OmiseProcessor struct {
	client   *omise.Client
	currency string
}

func NewOmiseProcessor(publicKey, secretKey, currency string) (*OmiseProcessor, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &OmiseProcessor{client: client, currency: currency}, nil
}

func (p *OmiseProcessor) Charge(
	ctx context.Context,
	amountCents int64,
	methodRef string,
	metadata map[string]any,
) (*ChargeResult, error) {
	charge := &omise.Charge{}
	err := p.client.Do(charge, &operations.CreateCharge{
		Amount:   amountCents,
		Currency: p.currency,
		Card:     methodRef,
		Metadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	if string(charge.Status) != "successful" {
		message := "charge not successful"
		if charge.FailureMessage != nil {
			message = *charge.FailureMessage
		}
		return nil, fmt.Errorf("%w: %s", ErrDeclined, message)
	}
	return &ChargeResult{ChargeRef: charge.ID}, nil
}

func (p *OmiseProcessor) Refund(ctx context.Context, chargeRef string, amountCents int64) error {
	refund := &omise.Refund{}
	err := p.client.Do(refund, &operations.CreateRefund{
		ChargeID: chargeRef,
		Amount:   amountCents,
	})
	if err != nil {
		return fmt.Errorf("create refund: %w", err)
	}
	return nil
}
