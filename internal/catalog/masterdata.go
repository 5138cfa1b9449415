package catalog

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Master-data lookup tables: small owner-scoped collections listed
// alphabetically and referenced by the operational resources.

// Tax is a named tax rate. One per owner may be the default.
type Tax struct {
	engine.Envelope `bson:",inline"`

	Name string  `bson:"name" json:"name"`
	Rate float64 `bson:"rate" json:"rate"`
}

func taxDefinition() definition[Tax, *Tax] {
	return definition[Tax, *Tax]{
		name:         "taxes",
		collection:   "taxes",
		base:         "/taxes",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		create: func(body bson.M) (*Tax, *engine.ValidationError) {
			c := &check{}
			tax := Tax{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Rate:     c.reqNumber(body, "rate"),
			}
			if tax.Rate < 0 {
				c.fail("rate", "must not be negative")
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &tax, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchNumber(c, body, patch, "rate")
			if rate, ok := patch["rate"].(float64); ok && rate < 0 {
				c.fail("rate", "must not be negative")
			}
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// Department groups technicians and tickets.
type Department struct {
	engine.Envelope `bson:",inline"`

	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

func departmentDefinition() definition[Department, *Department] {
	return definition[Department, *Department]{
		name:         "departments",
		collection:   "departments",
		base:         "/departments",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		create: func(body bson.M) (*Department, *engine.ValidationError) {
			c := &check{}
			dep := Department{
				Envelope:    envelopeFromBody(c, body),
				Name:        c.reqString(body, "name"),
				Description: c.optString(body, "description"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &dep, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchString(c, body, patch, "description")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// JobStatus is one step of the workshop workflow, displayed in a fixed
// order that must stay unique per owner.
type JobStatus struct {
	engine.Envelope `bson:",inline"`

	Name  string  `bson:"name" json:"name"`
	Color string  `bson:"color,omitempty" json:"color,omitempty"`
	Order float64 `bson:"order" json:"order"`
	Icon  any     `bson:"icon,omitempty" json:"icon,omitempty"`
}

func jobStatusDefinition() definition[JobStatus, *JobStatus] {
	return definition[JobStatus, *JobStatus]{
		name:         "jobstatuses",
		collection:   "jobstatuses",
		base:         "/jobstatuses",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "order", Value: 1}},
		populate:     engine.Fields("icon"),
		uniqueField:  "order",
		create: func(body bson.M) (*JobStatus, *engine.ValidationError) {
			c := &check{}
			status := JobStatus{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Color:    c.optString(body, "color"),
				Order:    c.reqNumber(body, "order"),
			}
			if icon, ok := c.optRef(body, "icon"); ok {
				status.Icon = icon
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &status, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchString(c, body, patch, "color")
			patchNumber(c, body, patch, "order")
			patchRef(c, body, patch, "icon")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// Brand is a vehicle manufacturer.
type Brand struct {
	engine.Envelope `bson:",inline"`

	Name string `bson:"name" json:"name"`
	Logo string `bson:"logo,omitempty" json:"logo,omitempty"`
}

func brandDefinition() definition[Brand, *Brand] {
	return definition[Brand, *Brand]{
		name:         "brands",
		collection:   "brands",
		base:         "/brands",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		create: func(body bson.M) (*Brand, *engine.ValidationError) {
			c := &check{}
			brand := Brand{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Logo:     c.optString(body, "logo"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &brand, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchString(c, body, patch, "logo")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// VehicleModel is a model within a brand's range.
type VehicleModel struct {
	engine.Envelope `bson:",inline"`

	Name  string `bson:"name" json:"name"`
	Brand any    `bson:"brand" json:"brand"`
}

func vehicleModelDefinition() definition[VehicleModel, *VehicleModel] {
	return definition[VehicleModel, *VehicleModel]{
		name:         "vehiclemodels",
		collection:   "vehiclemodels",
		base:         "/vehiclemodels",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		populate:     engine.Fields("brand"),
		filters: func(c router.Context) bson.M {
			return refFilters(c, "brand")
		},
		create: func(body bson.M) (*VehicleModel, *engine.ValidationError) {
			c := &check{}
			model := VehicleModel{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Brand:    c.reqRef(body, "brand"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &model, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchRef(c, body, patch, "brand")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// Icon is a named glyph referenced by job statuses. The URL points at an
// already-stored asset; the engine treats it as an opaque string.
type Icon struct {
	engine.Envelope `bson:",inline"`

	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
}

func iconDefinition() definition[Icon, *Icon] {
	return definition[Icon, *Icon]{
		name:         "icons",
		collection:   "icons",
		base:         "/icons",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		create: func(body bson.M) (*Icon, *engine.ValidationError) {
			c := &check{}
			icon := Icon{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				URL:      c.reqString(body, "url"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &icon, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchReqString(c, body, patch, "url")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// PaymentTerm is a settlement window offered to customers. One per owner
// may be the default.
type PaymentTerm struct {
	engine.Envelope `bson:",inline"`

	Name string  `bson:"name" json:"name"`
	Days float64 `bson:"days" json:"days"`
}

func paymentTermDefinition() definition[PaymentTerm, *PaymentTerm] {
	return definition[PaymentTerm, *PaymentTerm]{
		name:         "paymentterms",
		collection:   "paymentterms",
		base:         "/paymentterms",
		searchFields: []string{"name"},
		defaultSort:  bson.D{{Key: "days", Value: 1}},
		create: func(body bson.M) (*PaymentTerm, *engine.ValidationError) {
			c := &check{}
			term := PaymentTerm{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Days:     c.reqNumber(body, "days"),
			}
			if term.Days < 0 {
				c.fail("days", "must not be negative")
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &term, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchNumber(c, body, patch, "days")
			if days, ok := patch["days"].(float64); ok && days < 0 {
				c.fail("days", "must not be negative")
			}
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}

// Supplier is a parts or service vendor.
type Supplier struct {
	engine.Envelope `bson:",inline"`

	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

func supplierDefinition() definition[Supplier, *Supplier] {
	return definition[Supplier, *Supplier]{
		name:         "suppliers",
		collection:   "suppliers",
		base:         "/suppliers",
		searchFields: []string{"name", "email", "phone"},
		defaultSort:  bson.D{{Key: "name", Value: 1}},
		create: func(body bson.M) (*Supplier, *engine.ValidationError) {
			c := &check{}
			supplier := Supplier{
				Envelope: envelopeFromBody(c, body),
				Name:     c.reqString(body, "name"),
				Email:    c.optString(body, "email"),
				Phone:    c.optString(body, "phone"),
				Address:  c.optString(body, "address"),
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &supplier, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "name")
			patchString(c, body, patch, "email")
			patchString(c, body, patch, "phone")
			patchString(c, body, patch, "address")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}
