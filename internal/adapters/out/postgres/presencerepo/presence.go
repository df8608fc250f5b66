// Package presencerepo persists the shipper availability directory. The
// realtime layer flips shippers online when an authenticated shipper socket
// connects and offline when the last one goes away; dispatch tooling reads
// the directory to see who is deliverable.
package presencerepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crabor/internal/core/domain/model/kernel"
)

// ShipperPresenceDTO represents one shipper's availability row.
type ShipperPresenceDTO struct {
	ShipperID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Online     bool
	LastSeenAt time.Time
}

// TableName specifies the database table name for presence rows.
func (ShipperPresenceDTO) TableName() string {
	return "shipper_presence"
}

// GormShipperPresence implements ports.ShipperPresence using GORM upserts,
// so flipping a shipper that has no row yet creates it.
type GormShipperPresence struct {
	db *gorm.DB
}

// NewGormShipperPresence creates a presence directory backed by the given
// connection.
func NewGormShipperPresence(db *gorm.DB) *GormShipperPresence {
	return &GormShipperPresence{db: db}
}

// SetOnline marks the shipper as available.
func (p *GormShipperPresence) SetOnline(ctx context.Context, shipperID kernel.UUID) error {
	return p.flip(ctx, shipperID, true)
}

// SetOffline marks the shipper as unavailable.
func (p *GormShipperPresence) SetOffline(ctx context.Context, shipperID kernel.UUID) error {
	return p.flip(ctx, shipperID, false)
}

func (p *GormShipperPresence) flip(ctx context.Context, shipperID kernel.UUID, online bool) error {
	if err := shipperID.Validate(); err != nil {
		return err
	}

	dto := ShipperPresenceDTO{
		ShipperID:  shipperID.Bytes(),
		Online:     online,
		LastSeenAt: time.Now().UTC(),
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shipper_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"online", "last_seen_at"}),
		}).
		Create(&dto).Error
}
