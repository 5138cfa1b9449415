package catalog

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/workshophq/backoffice/pkg/engine"
)

// Customer is a workshop client. Vehicles and tickets reference it.
type Customer struct {
	engine.Envelope `bson:",inline"`

	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
}

func customerDefinition() definition[Customer, *Customer] {
	return definition[Customer, *Customer]{
		name:         "customers",
		collection:   "customers",
		base:         "/customers",
		searchFields: []string{"firstName", "lastName", "email", "phone"},
		create: func(body bson.M) (*Customer, *engine.ValidationError) {
			c := &check{}
			customer := Customer{
				Envelope:  envelopeFromBody(c, body),
				FirstName: c.reqString(body, "firstName"),
				LastName:  c.reqString(body, "lastName"),
				Email:     c.optString(body, "email"),
				Phone:     c.optString(body, "phone"),
				Address:   c.optString(body, "address"),
				Notes:     c.optString(body, "notes"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &customer, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "firstName")
			patchReqString(c, body, patch, "lastName")
			patchString(c, body, patch, "email")
			patchString(c, body, patch, "phone")
			patchString(c, body, patch, "address")
			patchString(c, body, patch, "notes")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}
