package guard

import (
	"context"

	"golang.org/x/net/html"

	"github.com/jeremyhahn/go-guard/pkg/clock"
	"github.com/jeremyhahn/go-guard/pkg/confirmation"
)

// Service is the remote marketplace as seen by the authenticator. Every
// call carries a precomputed signature and the time it was computed for.
type Service interface {
	clock.TimeSource

	// FetchConfirmations returns the confirmation page as a document tree.
	FetchConfirmations(ctx context.Context, deviceID, signature string, t uint32) (*html.Node, error)

	// FetchConfirmationDetails returns the details of confirmation id.
	FetchConfirmationDetails(ctx context.Context, deviceID, signature string, t uint32, id uint32) (*confirmation.Details, error)

	// ResolveConfirmation accepts (accept == true) or denies a confirmation
	// and reports whether the service applied the operation.
	ResolveConfirmation(ctx context.Context, deviceID, signature string, t uint32, id uint32, key uint64, accept bool) (bool, error)
}
