package payments

import (
	"context"

	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/square"
)

// LinkRequest describes the hosted checkout link the ledger needs from the gateway.
type LinkRequest struct {
	Name        string
	AmountCents int64
	ReferenceID string
}

// GatewayLinker abstracts the payment-link provider so the ledger can be
// exercised without gateway credentials.
type GatewayLinker interface {
	CreateLink(ctx context.Context, req LinkRequest) (string, error)
}

type squareLinker struct {
	client *square.Client
}

// NewSquareLinker adapts the Square client to the ledger's link interface.
func NewSquareLinker(client *square.Client) GatewayLinker {
	return &squareLinker{client: client}
}

func (s *squareLinker) CreateLink(ctx context.Context, req LinkRequest) (string, error) {
	link, err := s.client.CreatePaymentLink(ctx, square.PaymentLinkCreateParams{
		Name:        req.Name,
		AmountCents: req.AmountCents,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		return "", err
	}
	if link == nil || link.URL == nil || *link.URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway returned no payment link url")
	}
	return *link.URL, nil
}
