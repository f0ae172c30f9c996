package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicekit/internal/contact"
)

// Kind distinguishes the two profile lists.
type Kind string

const (
	KindIssuer Kind = "issuer"
	KindClient Kind = "client"
)

func (k Kind) Valid() bool {
	return k == KindIssuer || k == KindClient
}

// Party is the canonical contact and postal record of a sender or
// recipient. Only this structured form is ever written.
type Party struct {
	FirstName    string `gorm:"column:first_name;type:text" json:"firstName"`
	LastName     string `gorm:"column:last_name;type:text" json:"lastName"`
	AddressLine1 string `gorm:"column:address_line1;type:text" json:"addressLine1"`
	AddressLine2 string `gorm:"column:address_line2;type:text" json:"addressLine2"`
	City         string `gorm:"column:city;type:text" json:"city"`
	Province     string `gorm:"column:province;type:text" json:"province"`
	Country      string `gorm:"column:country;type:text" json:"country"`
	PostalCode   string `gorm:"column:postal_code;type:text" json:"postalCode"`
	Email        string `gorm:"column:email;type:text" json:"email"`
	Phone        string `gorm:"column:phone;type:text" json:"phone"`
}

// legacyParty is every shape a party has been stored in.
type legacyParty struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// UnmarshalJSON accepts both the structured and the legacy {name, address}
// encodings. Fields are trimmed; the phone is kept as stored.
func (p *Party) UnmarshalJSON(data []byte) error {
	var raw legacyParty
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = raw.normalize()
	return nil
}

func (l legacyParty) normalize() Party {
	p := Party{
		FirstName:    strings.TrimSpace(l.FirstName),
		LastName:     strings.TrimSpace(l.LastName),
		AddressLine1: strings.TrimSpace(l.AddressLine1),
		AddressLine2: strings.TrimSpace(l.AddressLine2),
		City:         strings.TrimSpace(l.City),
		Province:     strings.TrimSpace(l.Province),
		Country:      strings.TrimSpace(l.Country),
		PostalCode:   strings.TrimSpace(l.PostalCode),
		Email:        strings.TrimSpace(l.Email),
		Phone:        strings.TrimSpace(l.Phone),
	}
	if p.AddressLine1 == "" {
		p.AddressLine1 = strings.TrimSpace(l.Address)
	}
	if p.FirstName == "" && p.LastName == "" {
		p.FirstName, p.LastName = splitName(l.Name)
	}
	return p.trimmed()
}

// Normalize trims every field and rewrites the phone into its stored form.
// It runs when a party is written, never when one is read.
func (p Party) Normalize() Party {
	p = p.trimmed()
	p.Phone = contact.NormalizePhone(p.Phone)
	return p
}

func (p Party) trimmed() Party {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.AddressLine1 = strings.TrimSpace(p.AddressLine1)
	p.AddressLine2 = strings.TrimSpace(p.AddressLine2)
	p.City = strings.TrimSpace(p.City)
	p.Province = strings.TrimSpace(p.Province)
	p.Country = strings.TrimSpace(p.Country)
	p.PostalCode = strings.TrimSpace(p.PostalCode)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	return p
}

// FullName joins first and last name.
func (p Party) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// LocationLine renders "City, Province, Country PostalCode", skipping
// empty parts.
func (p Party) LocationLine() string {
	parts := make([]string, 0, 3)
	for _, v := range []string{p.City, p.Province, p.Country} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	line := strings.Join(parts, ", ")
	if pc := strings.TrimSpace(p.PostalCode); pc != "" {
		line = strings.TrimSpace(line + " " + pc)
	}
	return line
}

// PhoneParts splits the stored phone into country code and digits.
func (p Party) PhoneParts() contact.Phone {
	return contact.SplitCountryAndNumber(p.Phone)
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// Profile is a saved issuer or client.
type Profile struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Kind      Kind         `gorm:"type:varchar(16);not null;index"`
	NameKey   string       `gorm:"type:varchar(255);not null;index"`
	Party     Party        `gorm:"embedded"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime:false"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

// NameKeyFor is the case-insensitive identity of a profile within its kind.
func NameKeyFor(p Party) string {
	return strings.ToLower(strings.TrimSpace(p.FirstName)) + "\x00" + strings.ToLower(strings.TrimSpace(p.LastName))
}

type profileMeta struct {
	ID        snowflake.ID `json:"id"`
	Kind      Kind         `json:"kind,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// MarshalJSON writes the profile as a flat object: party fields plus
// id, kind and timestamps.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		profileMeta
		Party
	}{
		profileMeta: profileMeta{ID: p.ID, Kind: p.Kind, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		Party:       p.Party,
	})
}

// UnmarshalJSON reads the flat form written by MarshalJSON as well as the
// bare party objects of older backups.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var meta struct {
		ID        json.RawMessage `json:"id"`
		Kind      Kind            `json:"kind"`
		CreatedAt *time.Time      `json:"createdAt"`
		UpdatedAt *time.Time      `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}

	var party Party
	if err := json.Unmarshal(data, &party); err != nil {
		return err
	}

	out := Profile{Kind: meta.Kind, Party: party, NameKey: NameKeyFor(party)}
	if len(meta.ID) > 0 {
		var id snowflake.ID
		if err := id.UnmarshalJSON(meta.ID); err == nil {
			out.ID = id
		}
	}
	if meta.CreatedAt != nil {
		out.CreatedAt = *meta.CreatedAt
	}
	if meta.UpdatedAt != nil {
		out.UpdatedAt = *meta.UpdatedAt
	}
	*p = out
	return nil
}
