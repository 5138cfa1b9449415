package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Ticket is a service job: the resource with the deepest relationship
// graph. Listing a ticket inlines the customer, the vehicle with its brand
// and model, the assigned technician, and the workflow status.
type Ticket struct {
	engine.Envelope `bson:",inline"`

	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Total       float64    `bson:"total,omitempty" json:"total,omitempty"`
	ScheduledAt *time.Time `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Customer    any        `bson:"customer" json:"customer"`
	Vehicle     any        `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Technician  any        `bson:"technician,omitempty" json:"technician,omitempty"`
	JobStatus   any        `bson:"jobStatus,omitempty" json:"jobStatus,omitempty"`
	Department  any        `bson:"department,omitempty" json:"department,omitempty"`
}

func ticketDefinition() definition[Ticket, *Ticket] {
	return definition[Ticket, *Ticket]{
		name:         "tickets",
		collection:   "tickets",
		base:         "/tickets",
		searchFields: []string{"title", "description"},
		populate: []engine.Populate{
			{Path: "customer", Select: []string{"firstName", "lastName", "email", "phone"}},
			{Path: "vehicle", Select: []string{"plate", "brand", "model"}, Populate: []engine.Populate{
				{Path: "brand"},
				{Path: "model"},
			}},
			{Path: "technician", Select: []string{"firstName", "lastName", "avatar"}},
			{Path: "jobStatus"},
			{Path: "department"},
		},
		filters: func(c router.Context) bson.M {
			return refFilters(c, "customer", "vehicle", "technician", "jobStatus", "department")
		},
		create: func(body bson.M) (*Ticket, *engine.ValidationError) {
			c := &check{}
			ticket := Ticket{
				Envelope:    envelopeFromBody(c, body),
				Title:       c.reqString(body, "title"),
				Description: c.optString(body, "description"),
				Customer:    c.reqRef(body, "customer"),
			}
			if total, ok := c.optNumber(body, "total"); ok {
				if total < 0 {
					c.fail("total", "must not be negative")
				}
				ticket.Total = total
			}
			if raw := c.optString(body, "scheduledAt"); raw != "" {
				at, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					c.fail("scheduledAt", "must be an RFC 3339 timestamp")
				} else {
					ticket.ScheduledAt = &at
				}
			}
			if vehicle, ok := c.optRef(body, "vehicle"); ok {
				ticket.Vehicle = vehicle
			}
			if technician, ok := c.optRef(body, "technician"); ok {
				ticket.Technician = technician
			}
			if status, ok := c.optRef(body, "jobStatus"); ok {
				ticket.JobStatus = status
			}
			if department, ok := c.optRef(body, "department"); ok {
				ticket.Department = department
			}
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return &ticket, nil
		},
		patch: func(body bson.M) (bson.M, *engine.ValidationError) {
			c := &check{}
			patch := bson.M{}
			patchReqString(c, body, patch, "title")
			patchString(c, body, patch, "description")
			patchNumber(c, body, patch, "total")
			if total, ok := patch["total"].(float64); ok && total < 0 {
				c.fail("total", "must not be negative")
			}
			if raw, ok := body["scheduledAt"]; ok && raw != nil {
				s, isStr := raw.(string)
				if !isStr {
					c.fail("scheduledAt", "must be an RFC 3339 timestamp")
				} else if at, err := time.Parse(time.RFC3339, s); err != nil {
					c.fail("scheduledAt", "must be an RFC 3339 timestamp")
				} else {
					patch["scheduledAt"] = at
				}
			}
			patchRef(c, body, patch, "customer")
			patchRef(c, body, patch, "vehicle")
			patchRef(c, body, patch, "technician")
			patchRef(c, body, patch, "jobStatus")
			patchRef(c, body, patch, "department")
			envelopePatch(c, body, patch)
			if verr := c.err(); verr != nil {
				return nil, verr
			}
			return patch, nil
		},
	}
}
