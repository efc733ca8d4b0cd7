package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"leadforms/internal/domain"
)

// submittedLayout is the footer timestamp format of the admin notification
const submittedLayout = "1/2/2006, 3:04:05 PM"

var adminNotificationTemplate = template.Must(template.New("admin").Parse(`
<h2>New Lead Submission</h2>

<h3>Personal Information</h3>
<p><strong>Name:</strong> {{.Lead.FirstName}} {{.Lead.LastName}}</p>
<p><strong>Email:</strong> {{.Lead.Email}}</p>
<p><strong>Phone:</strong> {{.Lead.Phone}}{{with .Lead.PhoneExt}} ext. {{.}}{{end}}</p>
{{- with .Lead.TextNumber}}
<p><strong>Text Number:</strong> {{.}}</p>
{{- end}}

<h3>Business Information</h3>
{{- with .Lead.BusinessName}}
<p><strong>Business Name:</strong> {{.}}</p>
{{- end}}
{{- with .Lead.BusinessPhone}}
<p><strong>Business Phone:</strong> {{.}}{{with $.Lead.BusinessPhoneExt}} ext. {{.}}{{end}}</p>
{{- end}}
{{- with .Lead.BusinessEmail}}
<p><strong>Business Email:</strong> {{.}}</p>
{{- end}}
{{- with .Lead.BusinessServices}}
<p><strong>Business Services:</strong> {{.}}</p>
{{- end}}

<h3>Billing Address</h3>
{{- with .Lead.BillingAddress}}
<p><strong>Street:</strong> {{or .Street "Not provided"}}</p>
{{- with .AptUnit}}
<p><strong>Apt/Unit:</strong> {{.}}</p>
{{- end}}
<p><strong>City:</strong> {{or .City "Not provided"}}</p>
<p><strong>State:</strong> {{or .State "Not provided"}}</p>
<p><strong>ZIP Code:</strong> {{or .ZipCode "Not provided"}}</p>
<p><strong>Country:</strong> {{or .Country "USA"}}</p>
{{- else}}
<p>No billing address provided</p>
{{- end}}

<h3>Service Details</h3>
<p><strong>Service Requested:</strong> {{.Lead.ServiceDesired}}</p>
<p><strong>Preferred Contact Method:</strong> {{.Lead.PreferredContact}}</p>
{{- with .Lead.HasWebsite}}
<p><strong>Has Website:</strong> {{.}}</p>
{{- end}}
{{- with .Lead.WebsiteAddress}}
<p><strong>Website Address:</strong> {{.}}</p>
{{- end}}

<h3>Additional Information</h3>
<p><strong>Message:</strong> {{or .Lead.Message "None provided"}}</p>

<hr>
<p><em>Submitted on: {{.SubmittedOn}}</em></p>
`))

var userConfirmationTemplate = template.Must(template.New("confirmation").Parse(`
<h2>Thank you, {{.FirstName}}!</h2>
<p>We received your {{.ServiceDesired}} inquiry and will contact you soon.</p>
`))

// LeadEmailComposer renders the two emails sent for every stored lead
type LeadEmailComposer struct {
	now func() time.Time
}

// NewLeadEmailComposer creates a composer that stamps admin notifications with
// the local time of composition
func NewLeadEmailComposer() *LeadEmailComposer {
	return &LeadEmailComposer{now: time.Now}
}

// AdminNotification renders the admin notification carrying every submitted field
func (c *LeadEmailComposer) AdminNotification(lead *domain.Lead, adminEmail string) (EmailMessage, error) {
	data := struct {
		Lead        *domain.Lead
		SubmittedOn string
	}{
		Lead:        lead,
		SubmittedOn: c.now().Format(submittedLayout),
	}

	var body bytes.Buffer
	if err := adminNotificationTemplate.Execute(&body, data); err != nil {
		return EmailMessage{}, fmt.Errorf("failed to render admin notification: %w", err)
	}

	return EmailMessage{
		To:      adminEmail,
		Subject: fmt.Sprintf("New %s inquiry from %s", lead.ServiceDesired, lead.FullName()),
		HTML:    body.String(),
	}, nil
}

// UserConfirmation renders the thank-you email sent to the lead
func (c *LeadEmailComposer) UserConfirmation(lead *domain.Lead) (EmailMessage, error) {
	var body bytes.Buffer
	if err := userConfirmationTemplate.Execute(&body, lead); err != nil {
		return EmailMessage{}, fmt.Errorf("failed to render confirmation: %w", err)
	}

	return EmailMessage{
		To:      lead.Email,
		Subject: fmt.Sprintf("Thank you for your %s inquiry", lead.ServiceDesired),
		HTML:    body.String(),
	}, nil
}
