package places

import "fmt"

// Place is one point of interest near an origin. Category may be empty.
type Place struct {
	Name     string
	Category string
	Address  string
	City     string
}

// Format renders the place as a list line,
// "- <name> (<category>): <address>, <city>".
//
// A place without a category is rendered without its address too.
func (p Place) Format() string {
	if p.Category == "" {
		return fmt.Sprintf("- %s (no category): no address, no city", p.Name)
	}
	return fmt.Sprintf("- %s (%s): %s, %s", p.Name, p.Category, p.Address, p.City)
}

// First returns the best ranked place. The API orders results by distance
// from the origin.
func First(places []Place) (Place, bool) {
	if len(places) == 0 {
		return Place{}, false
	}
	return places[0], true
}

type searchResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	SearchResults []struct {
		Fields struct {
			Name     string `json:"name"`
			Category string `json:"group_sic_code_name_ext"`
			Address  string `json:"address"`
			City     string `json:"city"`
		} `json:"fields"`
	} `json:"searchResults"`
}

func (r searchResponse) places() []Place {
	out := make([]Place, 0, len(r.SearchResults))
	for _, result := range r.SearchResults {
		out = append(out, Place{
			Name:     result.Fields.Name,
			Category: result.Fields.Category,
			Address:  result.Fields.Address,
			City:     result.Fields.City,
		})
	}
	return out
}
