package model

import (
	"strings"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/htmlsanitize"
	"volunteer-hub/internal/shared/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusRequested is the status of an application nobody has reviewed yet.
const StatusRequested = "requested"

// Field names as stored in the application collection.
const (
	FieldOpportunityID  = "opportunityId"
	FieldVolunteerName  = "volunteerName"
	FieldVolunteerEmail = "volunteerEmail"
	FieldStatus         = "status"
)

// Application is a volunteer's request to join an opportunity. The post
// fields are a snapshot of the opportunity at the time of applying.
type Application struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	OpportunityID     string             `json:"opportunityId" bson:"opportunityId"`
	VolunteerName     string             `json:"volunteerName" bson:"volunteerName"`
	VolunteerEmail    string             `json:"volunteerEmail" bson:"volunteerEmail"`
	Status            string             `json:"status" bson:"status"`
	Suggestion        string             `json:"suggestion,omitempty" bson:"suggestion,omitempty"`
	OrganizationName  string             `json:"organizationName,omitempty" bson:"organizationName,omitempty"`
	OrganizationEmail string             `json:"organizationEmail,omitempty" bson:"organizationEmail,omitempty"`
	PostTitle         string             `json:"postTitle,omitempty" bson:"postTitle,omitempty"`
	Category          string             `json:"category,omitempty" bson:"category,omitempty"`
	Thumbnail         string             `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Location          string             `json:"location,omitempty" bson:"location,omitempty"`
	DeadLine          Deadline           `json:"deadLine" bson:"deadLine"`
	CreatedAt         time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// Sanitize trims and strips markup from the submitted fields.
func (a *Application) Sanitize() {
	a.OpportunityID = strings.TrimSpace(a.OpportunityID)
	a.VolunteerName = htmlsanitize.Text(a.VolunteerName)
	a.VolunteerEmail = strings.TrimSpace(a.VolunteerEmail)
	a.Status = htmlsanitize.Text(a.Status)
	a.Suggestion = htmlsanitize.Text(a.Suggestion)
	a.OrganizationEmail = strings.TrimSpace(a.OrganizationEmail)
	if a.Status == "" {
		a.Status = StatusRequested
	}
}

// Validate checks a submitted application.
func (a *Application) Validate() error {
	ve := apperrors.NewValidationErrors()
	if a.VolunteerEmail == "" {
		ve.Add(FieldVolunteerEmail, "is required", nil)
	} else if !utils.IsValidEmail(a.VolunteerEmail) {
		ve.Add(FieldVolunteerEmail, "is not a valid email", a.VolunteerEmail)
	}
	if a.OrganizationEmail != "" && !utils.IsValidEmail(a.OrganizationEmail) {
		ve.Add(FieldOrganizationEmail, "is not a valid email", a.OrganizationEmail)
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// VolunteerInfo is the applicant summary recorded on the opportunity.
func (a *Application) VolunteerInfo() VolunteerInfo {
	return VolunteerInfo{Name: a.VolunteerName, Email: a.VolunteerEmail, Status: a.Status}
}

// Snapshot copies the opportunity fields shown on the applicant's dashboard.
// Owner fields keep the submitted values and fall back to the stored ones.
func (a *Application) Snapshot(o *Opportunity) {
	a.OpportunityID = o.ID.Hex()
	a.PostTitle = o.Title
	a.Category = o.Category
	a.Thumbnail = o.Thumbnail
	a.Location = o.Location
	a.DeadLine = o.DeadLine
	if a.OrganizationEmail == "" {
		a.OrganizationEmail = o.OrganizationEmail
	}
	if a.OrganizationName == "" {
		a.OrganizationName = o.OrganizationName
	}
}
