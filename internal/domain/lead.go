package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMethod is the channel a lead asked to be reached through
type ContactMethod string

const (
	ContactPhone         ContactMethod = "phone"
	ContactEmail         ContactMethod = "email"
	ContactText          ContactMethod = "text"
	ContactBusinessPhone ContactMethod = "businessPhone"
	ContactBusinessEmail ContactMethod = "businessEmail"
)

// ContactMethods lists every accepted preferred contact method
var ContactMethods = []ContactMethod{
	ContactPhone,
	ContactEmail,
	ContactText,
	ContactBusinessPhone,
	ContactBusinessEmail,
}

// ParseContactMethod returns the contact method named by s
func ParseContactMethod(s string) (ContactMethod, bool) {
	for _, m := range ContactMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Service is the category of work a lead requested
type Service string

const (
	ServiceWebDevelopment Service = "Web Development"
	ServiceAppDevelopment Service = "App Development"
)

// Services lists every accepted service
var Services = []Service{
	ServiceWebDevelopment,
	ServiceAppDevelopment,
}

// ParseService returns the service named by s
func ParseService(s string) (Service, bool) {
	for _, svc := range Services {
		if string(svc) == s {
			return svc, true
		}
	}
	return "", false
}

// DefaultCountry is stored when a billing address arrives without a country
const DefaultCountry = "USA"

// BillingAddress is the optional billing address of a lead
type BillingAddress struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	AptUnit string `json:"aptUnit,omitempty" bson:"aptUnit,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// Lead represents a lead-generation form submission
type Lead struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	FirstName        string          `gorm:"not null" json:"firstName" bson:"firstName"`
	LastName         string          `gorm:"not null" json:"lastName" bson:"lastName"`
	Email            string          `gorm:"not null;index" json:"email" bson:"email"`
	Phone            string          `gorm:"not null" json:"phone" bson:"phone"`
	PhoneExt         string          `json:"phoneExt,omitempty" bson:"phoneExt,omitempty"`
	TextNumber       string          `json:"textNumber,omitempty" bson:"textNumber,omitempty"`
	BusinessName     string          `json:"businessName,omitempty" bson:"businessName,omitempty"`
	BusinessPhone    string          `json:"businessPhone,omitempty" bson:"businessPhone,omitempty"`
	BusinessPhoneExt string          `json:"businessPhoneExt,omitempty" bson:"businessPhoneExt,omitempty"`
	BusinessEmail    string          `json:"businessEmail,omitempty" bson:"businessEmail,omitempty"`
	BusinessServices string          `gorm:"type:text" json:"businessServices,omitempty" bson:"businessServices,omitempty"`
	BillingAddress   *BillingAddress `gorm:"type:text;serializer:json" json:"billingAddress,omitempty" bson:"billingAddress,omitempty"`
	PreferredContact ContactMethod   `gorm:"type:varchar(32);not null" json:"preferredContact" bson:"preferredContact"`
	ServiceDesired   Service         `gorm:"type:varchar(64);not null" json:"serviceDesired" bson:"serviceDesired"`
	HasWebsite       string          `json:"hasWebsite,omitempty" bson:"hasWebsite,omitempty"`
	WebsiteAddress   string          `json:"websiteAddress,omitempty" bson:"websiteAddress,omitempty"`
	Message          string          `gorm:"type:text" json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt" bson:"createdAt"`
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// AssignIdentity gives the lead an id and a creation time if it has none yet.
// Both are write-once.
func (l *Lead) AssignIdentity(now time.Time) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now.UTC()
	}
}

// BeforeCreate hook
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	l.AssignIdentity(time.Now())
	return nil
}

// FullName returns "first last"
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}
