package catalog

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Vehicle is a customer's vehicle. Brand and model resolve through the
// population resolver; model itself carries its brand one level deeper.
type Vehicle struct {
	engine.Envelope `bson:",inline"`

	Plate    string  `bson:"plate" json:"plate"`
	VIN      string  `bson:"vin,omitempty" json:"vin,omitempty"`
	Year     float64 `bson:"year,omitempty" json:"year,omitempty"`
	Color    string  `bson:"color,omitempty" json:"color,omitempty"`
	Mileage  float64 `bson:"mileage,omitempty" json:"mileage,omitempty"`
	Customer any     `bson:"customer" json:"customer"`
	Brand    any     `bson:"brand,omitempty" json:"brand,omitempty"`
	Model    any     `bson:"model,omitempty" json:"model,omitempty"`
}

func vehicleDefinition() definition[Vehicle, *Vehicle] {
	return definition[Vehicle, *Vehicle]{
		name:         "vehicles",
		collection:   "vehicles",
		base:         "/vehicles",
		searchFields: []string{"plate", "vin"},
		populate: []engine.Populate{
			{Path: "customer", Select: []string{"firstName", "lastName", "email", "phone"}},
			{Path: "brand"},
			{Path: "model", Populate: []engine.Populate{{Path: "brand"}}},
		},
		filters: func(c router.Context) bson.M {
			return refFilters(c, "customer", "brand", "model")
		},
		create: func(body bson.M) (*Vehicle, *engine.ValidationError) {
			c := &check{}
			vehicle := Vehicle{
				Envelope: envelopeFromBody(c, body),
				Plate:    c.reqString(body, "plate"),
				VIN:      c.optString(body, "vin"),
				Color:    c.optString(body, "color"),
				Customer: c.reqRef(body, "customer"),
			}
			if year, ok := c.optNumber(body, "year"); ok {
				vehicle.Year = year
			}
			if mileage, ok := c.optNumber(body, "mileage"); ok {
				vehicle.Mileage = mileage
			}
			if brand, ok := c.optRef(body, "brand"); ok {
				vehicle.Brand = brand
			}
			if model, ok := c.optRef(body, "model"); ok {
				vehicle.Model = model
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &vehicle, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "plate")
			patchString(c, body, patch, "vin")
			patchString(c, body, patch, "color")
			patchNumber(c, body, patch, "year")
			patchNumber(c, body, patch, "mileage")
			patchRef(c, body, patch, "customer")
			patchRef(c, body, patch, "brand")
			patchRef(c, body, patch, "model")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}
