package school

import (
	"context"
	"time"

	"github.com/samsedu/rise/core"
)

// School is the unit of data isolation: students, teachers and school-admins
// all belong to exactly one school.
type School struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
}

func (ns *NewSchool) Validate(ctx context.Context, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Address = core.CleanString(ns.Address)
	ns.ContactEmail = core.CleanString(ns.ContactEmail, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, ns.Name)
}
