package model

import (
	"net/url"
	"strings"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/htmlsanitize"
	"volunteer-hub/internal/shared/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names as stored in the opportunity collection.
const (
	FieldID                = "_id"
	FieldTitle             = "title"
	FieldCategory          = "category"
	FieldDescription       = "description"
	FieldLocation          = "location"
	FieldThumbnail         = "thumbnail"
	FieldDeadLine          = "deadLine"
	FieldNumberOfVolunteer = "numberOfVolunteer"
	FieldOrganizationName  = "organizationName"
	FieldOrganizationEmail = "organizationEmail"
	FieldVolunteerInfo     = "volunteerInfo"
	FieldCreatedAt         = "createdAt"
	FieldUpdatedAt         = "updatedAt"
)

// VolunteerInfo is the latest applicant recorded on an opportunity.
type VolunteerInfo struct {
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Status string `json:"status" bson:"status"`
}

// Opportunity is a volunteer post published by an organization.
type Opportunity struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title             string             `json:"title" bson:"title"`
	Category          string             `json:"category" bson:"category"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty"`
	Location          string             `json:"location,omitempty" bson:"location,omitempty"`
	Thumbnail         string             `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	DeadLine          Deadline           `json:"deadLine" bson:"deadLine"`
	NumberOfVolunteer SlotCount          `json:"numberOfVolunteer" bson:"numberOfVolunteer"`
	OrganizationName  string             `json:"organizationName,omitempty" bson:"organizationName,omitempty"`
	OrganizationEmail string             `json:"organizationEmail" bson:"organizationEmail"`
	VolunteerInfo     *VolunteerInfo     `json:"volunteerInfo,omitempty" bson:"volunteerInfo,omitempty"`
	CreatedAt         time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Sanitize strips markup from the text fields in place.
func (o *Opportunity) Sanitize() {
	o.Title = htmlsanitize.Text(o.Title)
	o.Category = htmlsanitize.Text(o.Category)
	o.Description = htmlsanitize.Rich(o.Description)
	o.Location = htmlsanitize.Text(o.Location)
	o.Thumbnail = strings.TrimSpace(o.Thumbnail)
	o.OrganizationName = htmlsanitize.Text(o.OrganizationName)
	o.OrganizationEmail = strings.TrimSpace(o.OrganizationEmail)
}

// Validate checks a new opportunity before it is stored.
func (o *Opportunity) Validate() error {
	ve := apperrors.NewValidationErrors()
	if o.Title == "" {
		ve.Add(FieldTitle, "is required", nil)
	}
	if o.Category == "" {
		ve.Add(FieldCategory, "is required", nil)
	}
	if o.OrganizationEmail == "" {
		ve.Add(FieldOrganizationEmail, "is required", nil)
	} else if !utils.IsValidEmail(o.OrganizationEmail) {
		ve.Add(FieldOrganizationEmail, "is not a valid email", o.OrganizationEmail)
	}
	if o.NumberOfVolunteer < 0 {
		ve.Add(FieldNumberOfVolunteer, "cannot be negative", o.NumberOfVolunteer.Int())
	} else if o.NumberOfVolunteer > MaxSlotCount {
		ve.Add(FieldNumberOfVolunteer, "is too large", o.NumberOfVolunteer.Int())
	}
	if o.Thumbnail != "" && !isHTTPURL(o.Thumbnail) {
		ve.Add(FieldThumbnail, "must be an http(s) URL", o.Thumbnail)
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ToMap exposes the stored fields to the ownership policy.
func (o *Opportunity) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		FieldID:                o.ID.Hex(),
		FieldTitle:             o.Title,
		FieldCategory:          o.Category,
		FieldDescription:       o.Description,
		FieldLocation:          o.Location,
		FieldThumbnail:         o.Thumbnail,
		FieldNumberOfVolunteer: int64(o.NumberOfVolunteer),
		FieldOrganizationName:  o.OrganizationName,
		FieldOrganizationEmail: o.OrganizationEmail,
	}
	if !o.DeadLine.IsZero() {
		m[FieldDeadLine] = o.DeadLine.UTC().Format(time.RFC3339)
	} else {
		m[FieldDeadLine] = ""
	}
	return m
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
