// Package billingsvc holds stand-ins for the hosted payment provider.
// The provider renders the whole billing UI; this layer only brokers a
// portal session URL for an authenticated caller.
package billingsvc

import (
	"context"

	"github.com/terakoya-app/terakoya/core"
)

type dummyPortal struct {
	baseURL string
}

var _ core.BillingPortal = (*dummyPortal)(nil)

func NewDummyPortal() *dummyPortal {
	return &dummyPortal{baseURL: "https://billing.example.com/portal/"}
}

func (p *dummyPortal) PortalURL(_ context.Context, customerID string) (string, error) {
	return p.baseURL + customerID, nil
}
