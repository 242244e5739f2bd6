package model

import (
	"strings"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/htmlsanitize"

	"go.mongodb.org/mongo-driver/bson"
)

// OpportunityPatch is a field-level update of an opportunity. Nil fields are
// left untouched. OrganizationEmail is only read to reject ownership changes.
type OpportunityPatch struct {
	Title             *string    `json:"title,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Location          *string    `json:"location,omitempty"`
	Thumbnail         *string    `json:"thumbnail,omitempty"`
	DeadLine          *Deadline  `json:"deadLine,omitempty"`
	NumberOfVolunteer *SlotCount `json:"numberOfVolunteer,omitempty"`
	OrganizationName  *string    `json:"organizationName,omitempty"`
	OrganizationEmail *string    `json:"organizationEmail,omitempty"`
}

// Sanitize strips markup from the supplied text fields in place.
func (p *OpportunityPatch) Sanitize() {
	sanitize(p.Title, htmlsanitize.Text)
	sanitize(p.Category, htmlsanitize.Text)
	sanitize(p.Description, htmlsanitize.Rich)
	sanitize(p.Location, htmlsanitize.Text)
	sanitize(p.Thumbnail, strings.TrimSpace)
	sanitize(p.OrganizationName, htmlsanitize.Text)
	sanitize(p.OrganizationEmail, strings.TrimSpace)
}

func sanitize(s *string, fn func(string) string) {
	if s != nil {
		*s = fn(*s)
	}
}

// Validate rejects empty patches and invalid values. owner is the stored
// organizationEmail of the target.
func (p *OpportunityPatch) Validate(owner string) error {
	if p.OrganizationEmail != nil && *p.OrganizationEmail != owner {
		return apperrors.NewValidationError("organizationEmail cannot be changed").WithCode("IMMUTABLE_FIELD")
	}
	if len(p.Fields()) == 0 {
		return apperrors.NewValidationError("update must contain at least one field").WithCode("EMPTY_PATCH")
	}

	ve := apperrors.NewValidationErrors()
	if p.Title != nil && *p.Title == "" {
		ve.Add(FieldTitle, "cannot be empty", nil)
	}
	if p.Category != nil && *p.Category == "" {
		ve.Add(FieldCategory, "cannot be empty", nil)
	}
	if p.NumberOfVolunteer != nil {
		if n := *p.NumberOfVolunteer; n < 0 {
			ve.Add(FieldNumberOfVolunteer, "cannot be negative", n.Int())
		} else if n > MaxSlotCount {
			ve.Add(FieldNumberOfVolunteer, "is too large", n.Int())
		}
	}
	if p.Thumbnail != nil && *p.Thumbnail != "" && !isHTTPURL(*p.Thumbnail) {
		ve.Add(FieldThumbnail, "must be an http(s) URL", *p.Thumbnail)
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// Fields returns the $set document of the patch.
func (p *OpportunityPatch) Fields() bson.M {
	set := bson.M{}
	putString(set, FieldTitle, p.Title)
	putString(set, FieldCategory, p.Category)
	putString(set, FieldDescription, p.Description)
	putString(set, FieldLocation, p.Location)
	putString(set, FieldThumbnail, p.Thumbnail)
	putString(set, FieldOrganizationName, p.OrganizationName)
	if p.DeadLine != nil {
		set[FieldDeadLine] = *p.DeadLine
	}
	if p.NumberOfVolunteer != nil {
		set[FieldNumberOfVolunteer] = *p.NumberOfVolunteer
	}
	return set
}

func putString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

// Apply writes the patch onto o.
func (p *OpportunityPatch) Apply(o *Opportunity) {
	apply(&o.Title, p.Title)
	apply(&o.Category, p.Category)
	apply(&o.Description, p.Description)
	apply(&o.Location, p.Location)
	apply(&o.Thumbnail, p.Thumbnail)
	apply(&o.OrganizationName, p.OrganizationName)
	if p.DeadLine != nil {
		o.DeadLine = *p.DeadLine
	}
	if p.NumberOfVolunteer != nil {
		o.NumberOfVolunteer = *p.NumberOfVolunteer
	}
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
