package model

import "time"

// Evidence is the tool-specific payload of a finding, modeled as a tagged
// union: exactly one branch is non-nil, matching the finding's category.
//
// Design decision: Tool output is heterogeneous, but representing it as an
// untyped map would force the correlation engine to duck-type field access
// at runtime. A union of concrete structs lets the engine pattern-match the
// fields it understands (handle, email, phone, name, location) through the
// accessor methods below, while unknown tool data simply lives in the branch
// struct without affecting correlation.
type Evidence struct {
	// Account is set for account-presence findings.
	Account *AccountEvidence `json:"account,omitempty"`

	// Breach is set for credential-exposure findings.
	Breach *BreachEvidence `json:"breach,omitempty"`

	// Document is set for document-metadata findings.
	Document *DocumentEvidence `json:"document,omitempty"`

	// Profile is set for profile-summary findings.
	Profile *ProfileEvidence `json:"profile,omitempty"`

	// Contact is set for contact-info findings.
	Contact *ContactEvidence `json:"contact,omitempty"`
}

// AccountEvidence describes an account registered on a platform.
type AccountEvidence struct {
	// Platform is the service where the account exists.
	Platform string `json:"platform"`

	// ProfileURL points at the account's public page.
	ProfileURL string `json:"profile_url,omitempty"`

	// Username is the handle the account is registered under.
	Username string `json:"username,omitempty"`

	// Email is the address the account is registered under, when known.
	Email string `json:"email,omitempty"`

	// DisplayName is the user-visible name on the account, when exposed.
	DisplayName string `json:"display_name,omitempty"`
}

// BreachEvidence describes credentials found in a breach corpus.
type BreachEvidence struct {
	// BreachName identifies the breach the credentials appeared in.
	BreachName string `json:"breach_name"`

	// Email is the exposed address.
	Email string `json:"email,omitempty"`

	// BreachDate is when the breach occurred, when known.
	BreachDate time.Time `json:"breach_date,omitempty"`

	// DataClasses lists the kinds of data exposed (passwords, phone numbers, ...).
	DataClasses []string `json:"data_classes,omitempty"`

	// PasswordExposed is true when password material was part of the breach.
	PasswordExposed bool `json:"password_exposed"`
}

// DocumentEvidence describes metadata extracted from a published document or image.
type DocumentEvidence struct {
	// DocumentURL points at the analyzed document.
	DocumentURL string `json:"document_url"`

	// MIMEType is the document's content type.
	MIMEType string `json:"mime_type,omitempty"`

	// Author is the embedded author/artist field.
	Author string `json:"author,omitempty"`

	// Software is the creating application.
	Software string `json:"software,omitempty"`

	// Location is a human-readable place derived from embedded GPS data.
	Location string `json:"location,omitempty"`

	// Latitude and Longitude are the embedded GPS coordinates, when present.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// CreatedAt is the embedded creation timestamp.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ProfileEvidence describes details scraped from a public profile page.
type ProfileEvidence struct {
	// Platform is the service hosting the profile.
	Platform string `json:"platform"`

	// DisplayName is the name shown on the profile.
	DisplayName string `json:"display_name,omitempty"`

	// Location is the self-reported location on the profile.
	Location string `json:"location,omitempty"`

	// Bio is the profile description.
	Bio string `json:"bio,omitempty"`

	// AvatarURL points at the profile image.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ContactEvidence describes a related contact identifier discovered for the target.
type ContactEvidence struct {
	// Email is a related email address.
	Email string `json:"email,omitempty"`

	// Phone is a related phone number.
	Phone string `json:"phone,omitempty"`

	// Handle is a related username.
	Handle string `json:"handle,omitempty"`

	// Carrier is the phone carrier, when the lookup resolved one.
	Carrier string `json:"carrier,omitempty"`

	// Region is the geographic region associated with the identifier.
	Region string `json:"region,omitempty"`

	// Source names where the contact identifier was seen.
	Source string `json:"source,omitempty"`
}

// Handle returns the username field of whichever branch carries one.
func (e Evidence) Handle() (string, bool) {
	switch {
	case e.Account != nil && e.Account.Username != "":
		return e.Account.Username, true
	case e.Contact != nil && e.Contact.Handle != "":
		return e.Contact.Handle, true
	}
	return "", false
}

// Email returns the email field of whichever branch carries one.
func (e Evidence) Email() (string, bool) {
	switch {
	case e.Account != nil && e.Account.Email != "":
		return e.Account.Email, true
	case e.Breach != nil && e.Breach.Email != "":
		return e.Breach.Email, true
	case e.Contact != nil && e.Contact.Email != "":
		return e.Contact.Email, true
	}
	return "", false
}

// Phone returns the phone field of whichever branch carries one.
func (e Evidence) Phone() (string, bool) {
	if e.Contact != nil && e.Contact.Phone != "" {
		return e.Contact.Phone, true
	}
	return "", false
}

// DisplayName returns the display-name field of whichever branch carries one.
func (e Evidence) DisplayName() (string, bool) {
	switch {
	case e.Profile != nil && e.Profile.DisplayName != "":
		return e.Profile.DisplayName, true
	case e.Account != nil && e.Account.DisplayName != "":
		return e.Account.DisplayName, true
	case e.Document != nil && e.Document.Author != "":
		return e.Document.Author, true
	}
	return "", false
}

// Location returns the location field of whichever branch carries one.
func (e Evidence) Location() (string, bool) {
	switch {
	case e.Profile != nil && e.Profile.Location != "":
		return e.Profile.Location, true
	case e.Document != nil && e.Document.Location != "":
		return e.Document.Location, true
	case e.Contact != nil && e.Contact.Region != "":
		return e.Contact.Region, true
	}
	return "", false
}
