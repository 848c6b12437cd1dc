package disburse

import (
	"context"

	"github.com/shopspring/decimal"
)

// Request describes a single disbursement to a partner.
type Request struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Destination string
}

// Provider initiates disbursements with an external payment rail. The final
// outcome arrives asynchronously on the payout webhook; the returned txnID is
// the provider's acceptance reference and may be empty.
type Provider interface {
	Disburse(ctx context.Context, req Request) (txnID string, err error)
}
