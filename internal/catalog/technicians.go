package catalog

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Technician is a workshop employee assignable to tickets. The avatar is a
// URL to an already-stored image.
type Technician struct {
	engine.Envelope `bson:",inline"`

	FirstName  string `bson:"firstName" json:"firstName"`
	LastName   string `bson:"lastName" json:"lastName"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar     string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Department any    `bson:"department,omitempty" json:"department,omitempty"`
}

func technicianDefinition() definition[Technician, *Technician] {
	return definition[Technician, *Technician]{
		name:         "technicians",
		collection:   "technicians",
		base:         "/technicians",
		searchFields: []string{"firstName", "lastName", "email"},
		populate:     engine.Fields("department"),
		filters: func(c router.Context) bson.M {
			return refFilters(c, "department")
		},
		create: func(body bson.M) (*Technician, *engine.ValidationError) {
			c := &check{}
			tech := Technician{
				Envelope:  envelopeFromBody(c, body),
				FirstName: c.reqString(body, "firstName"),
				LastName:  c.reqString(body, "lastName"),
				Email:     c.optString(body, "email"),
				Phone:     c.optString(body, "phone"),
				Avatar:    c.optString(body, "avatar"),
			}
			if department, ok := c.optRef(body, "department"); ok {
				tech.Department = department
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &tech, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "firstName")
			patchReqString(c, body, patch, "lastName")
			patchString(c, body, patch, "email")
			patchString(c, body, patch, "phone")
			patchString(c, body, patch, "avatar")
			patchRef(c, body, patch, "department")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}
