package disburse

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// StubProvider accepts every disbursement without calling out anywhere. Used
// in development and in tests.
type StubProvider struct{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (p *StubProvider) Disburse(_ context.Context, req Request) (string, error) {
	txnID := "stub_" + uuid.NewString()
	log.Printf("[Disburse] STUB accepted %s %s %s -> %s (txn %s)", req.Amount.StringFixed(2), req.Currency, req.Reference, req.Destination, txnID)
	return txnID, nil
}
