package ports

import (
	"context"

	"crabor/internal/core/domain/model/kernel"
)

// ShipperPresence is the external collaborator tracking which shippers are
// online. The presence directory flips the flag as shipper connections come
// and go; order assignment surfaces it to dispatch tooling.
type ShipperPresence interface {
	SetOnline(ctx context.Context, shipperID kernel.UUID) error
	SetOffline(ctx context.Context, shipperID kernel.UUID) error
}
