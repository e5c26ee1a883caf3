package site

import (
	"fmt"
	"net/url"
)

// Placeholders stand in for a detail-page element that is absent. An element
// that is present but empty keeps its empty text.
const (
	NoName     = "No Name"
	NoCategory = "No Category"
	NoAddress  = "No Address"
	NoState    = "No State"
	NoZipcode  = "No Zipcode"
	NoPhone    = "No Phone"
)

// NationalSite is one park, monument or other site listed on nps.gov.
type NationalSite struct {
	Category string
	Name     string
	// Address is "<locality>, <state>"
	Address string
	// ZipCode may be hyphenated, e.g. 82190-0168
	ZipCode string
	Phone   string
	// URL is the detail page the record was built from.
	URL url.URL
}

// Info renders "<name> (<category>): <address> <zipcode>".
func (s NationalSite) Info() string {
	return fmt.Sprintf("%s (%s): %s %s", s.Name, s.Category, s.Address, s.ZipCode)
}

// Field names one value scraped from a detail page.
type Field string

const (
	FieldName     Field = "name"
	FieldCategory Field = "category"
	FieldLocality Field = "locality"
	FieldState    Field = "state"
	FieldZipcode  Field = "zipcode"
	FieldPhone    Field = "phone"
)

// Detail is a scraped detail page before placeholders are applied: a field
// is in Values only when its element was found.
type Detail struct {
	Values map[Field]string
}

// Lookup returns the scraped text of f and whether its element existed.
func (d Detail) Lookup(f Field) (string, bool) {
	v, ok := d.Values[f]
	return v, ok
}

// Missing lists the fields whose element was absent, in page order.
func (d Detail) Missing() []Field {
	var missing []Field
	for _, df := range detailFields {
		if _, ok := d.Values[df.field]; !ok {
			missing = append(missing, df.field)
		}
	}
	return missing
}

// Site applies the placeholder policy and assembles the record.
func (d Detail) Site(pageURL url.URL) NationalSite {
	orPlaceholder := func(f Field) string {
		if v, ok := d.Lookup(f); ok {
			return v
		}
		return placeholderFor(f)
	}
	return NationalSite{
		Category: orPlaceholder(FieldCategory),
		Name:     orPlaceholder(FieldName),
		Address:  orPlaceholder(FieldLocality) + ", " + orPlaceholder(FieldState),
		ZipCode:  orPlaceholder(FieldZipcode),
		Phone:    orPlaceholder(FieldPhone),
		URL:      pageURL,
	}
}

func placeholderFor(f Field) string {
	for _, df := range detailFields {
		if df.field == f {
			return df.placeholder
		}
	}
	return ""
}
