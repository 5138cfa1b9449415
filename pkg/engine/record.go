package engine

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Envelope is the common persistence envelope every resource document
// carries. Resource structs embed it inline so the generic service can
// stamp ownership, timestamps, and the soft-delete markers without knowing
// the concrete shape.
type Envelope struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	IsDeleted bool               `bson:"isDeleted" json:"isDeleted"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewEnvelope returns an envelope with the documented defaults applied
// (active, not deleted, not default).
func NewEnvelope() Envelope {
	return Envelope{IsActive: true}
}

// RecordID returns the store-assigned identifier.
func (e *Envelope) RecordID() primitive.ObjectID { return e.ID }

// SetRecordID sets the store-assigned identifier after an insert.
func (e *Envelope) SetRecordID(id primitive.ObjectID) { e.ID = id }

// Owner returns the tenant that owns the record.
func (e *Envelope) Owner() primitive.ObjectID { return e.OwnerID }

// SetOwner stamps the tenant scope onto the record.
func (e *Envelope) SetOwner(id primitive.ObjectID) { e.OwnerID = id }

// Default reports whether the record is its owner's preselected one.
func (e *Envelope) Default() bool { return e.IsDefault }

// Stamp sets the write timestamps. CreatedAt is only set once.
func (e *Envelope) Stamp(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}

// Record is the envelope contract the generic service relies on. Any struct
// embedding Envelope satisfies it through its pointer type.
type Record interface {
	RecordID() primitive.ObjectID
	SetRecordID(primitive.ObjectID)
	Owner() primitive.ObjectID
	SetOwner(primitive.ObjectID)
	Default() bool
	Stamp(time.Time)
}

// RecordPtr constrains a pointer to a resource struct embedding Envelope.
type RecordPtr[T any] interface {
	*T
	Record
}
