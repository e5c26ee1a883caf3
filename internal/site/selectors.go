package site

// State index on the home page: one anchor per state.
const stateLinkSelector = "#HERO ul.dropdown-menu.SearchBar-keywordSearch a"

// State page: one list cell per site, the first anchor links the site.
const siteCellSelector = "div.col-md-9.col-sm-9.col-xs-12.table-cell.list_left"

type fieldSpec struct {
	field       Field
	selector    string
	placeholder string
}

// detailFields is ordered as the values appear on a detail page.
//
//nolint:gochecknoglobals // static lookup table
var detailFields = []fieldSpec{
	{FieldName, "a.Hero-title", NoName},
	{FieldCategory, "span.Hero-designation", NoCategory},
	{FieldLocality, "span[itemprop=addressLocality]", NoAddress},
	{FieldState, "span.region", NoState},
	{FieldZipcode, "span.postal-code", NoZipcode},
	{FieldPhone, "span[itemprop=telephone]", NoPhone},
}
