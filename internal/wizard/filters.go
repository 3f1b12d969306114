package wizard

import (
	"fmt"

	"commandcenter/internal/domain"
)

// FieldKind tells the view which control renders a filter field.
type FieldKind string

const (
	KindInput  FieldKind = "input"
	KindSelect FieldKind = "select"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Sensitive   bool      `json:"sensitive,omitempty"`
}

// FilterSet is one tool's form state. Every key in Fields maps 1:1 to a
// value in Map; there is no cross-field validation.
type FilterSet interface {
	Set(field, value string) error
	Map() map[string]string
	Fields() []Field
}

func opts(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func unknownField(tool domain.Tool, field string) error {
	return fmt.Errorf("%s filters have no field %q", tool, field)
}

// ---- Apollo.io ----

type ApolloFilters struct {
	PersonTitles          string
	PersonLocations       string
	OrganizationLocations string
	EmployeeRanges        string
	Industry              string
	Keywords              string
	EmailStatus           string
	PerPage               string
}

func DefaultApolloFilters() ApolloFilters {
	return ApolloFilters{EmailStatus: "verified", PerPage: "25"}
}

func (f *ApolloFilters) Set(field, value string) error {
	switch field {
	case "personTitles":
		f.PersonTitles = value
	case "personLocations":
		f.PersonLocations = value
	case "organizationLocations":
		f.OrganizationLocations = value
	case "employeeRanges":
		f.EmployeeRanges = value
	case "industry":
		f.Industry = value
	case "keywords":
		f.Keywords = value
	case "emailStatus":
		f.EmailStatus = value
	case "perPage":
		f.PerPage = value
	default:
		return unknownField(domain.ToolApollo, field)
	}
	return nil
}

func (f *ApolloFilters) Map() map[string]string {
	return map[string]string{
		"personTitles":          f.PersonTitles,
		"personLocations":       f.PersonLocations,
		"organizationLocations": f.OrganizationLocations,
		"employeeRanges":        f.EmployeeRanges,
		"industry":              f.Industry,
		"keywords":              f.Keywords,
		"emailStatus":           f.EmailStatus,
		"perPage":               f.PerPage,
	}
}

func (f *ApolloFilters) Fields() []Field {
	return []Field{
		{Key: "personTitles", Label: "Job Titles", Kind: KindInput, Placeholder: "CEO, Founder, VP Sales"},
		{Key: "personLocations", Label: "Person Location", Kind: KindInput, Placeholder: "New York, US"},
		{Key: "organizationLocations", Label: "Company Location", Kind: KindInput, Placeholder: "United States"},
		{Key: "employeeRanges", Label: "Company Size", Kind: KindSelect, Options: opts(
			"", "Any size", "1,10", "1-10", "11,50", "11-50", "51,200", "51-200", "201,500", "201-500", "501,1000", "501-1000", "1001,10000", "1001+")},
		{Key: "industry", Label: "Industry", Kind: KindInput, Placeholder: "Software, Healthcare"},
		{Key: "keywords", Label: "Keywords", Kind: KindInput, Placeholder: "saas, automation"},
		{Key: "emailStatus", Label: "Email Status", Kind: KindSelect, Options: opts(
			"verified", "Verified only", "guessed", "Guessed", "any", "Any")},
		{Key: "perPage", Label: "Results", Kind: KindSelect, Options: opts("10", "10", "25", "25", "50", "50", "100", "100")},
	}
}

// ---- Apify ----

type ApifyFilters struct {
	SearchTerms       string
	Location          string
	MaxItems          string
	Language          string
	IncludeWebResults string
}

func DefaultApifyFilters() ApifyFilters {
	return ApifyFilters{MaxItems: "50", Language: "en", IncludeWebResults: "false"}
}

func (f *ApifyFilters) Set(field, value string) error {
	switch field {
	case "searchTerms":
		f.SearchTerms = value
	case "location":
		f.Location = value
	case "maxItems":
		f.MaxItems = value
	case "language":
		f.Language = value
	case "includeWebResults":
		f.IncludeWebResults = value
	default:
		return unknownField(domain.ToolApify, field)
	}
	return nil
}

func (f *ApifyFilters) Map() map[string]string {
	return map[string]string{
		"searchTerms":       f.SearchTerms,
		"location":          f.Location,
		"maxItems":          f.MaxItems,
		"language":          f.Language,
		"includeWebResults": f.IncludeWebResults,
	}
}

func (f *ApifyFilters) Fields() []Field {
	return []Field{
		{Key: "searchTerms", Label: "Search Terms", Kind: KindInput, Placeholder: "plumbers, dentists"},
		{Key: "location", Label: "Location", Kind: KindInput, Placeholder: "Austin, TX"},
		{Key: "maxItems", Label: "Max Results", Kind: KindSelect, Options: opts("25", "25", "50", "50", "100", "100", "250", "250")},
		{Key: "language", Label: "Language", Kind: KindSelect, Options: opts("en", "English", "es", "Spanish", "de", "German", "fr", "French")},
		{Key: "includeWebResults", Label: "Include Web Results", Kind: KindSelect, Options: opts("false", "No", "true", "Yes")},
	}
}

// ---- PhantomBuster ----

type PhantombusterFilters struct {
	SearchURL        string
	NumberOfProfiles string
	ConnectionDegree string
	SessionCookie    string
}

func DefaultPhantombusterFilters() PhantombusterFilters {
	return PhantombusterFilters{NumberOfProfiles: "100", ConnectionDegree: "2nd"}
}

func (f *PhantombusterFilters) Set(field, value string) error {
	switch field {
	case "searchUrl":
		f.SearchURL = value
	case "numberOfProfiles":
		f.NumberOfProfiles = value
	case "connectionDegree":
		f.ConnectionDegree = value
	case "sessionCookie":
		f.SessionCookie = value
	default:
		return unknownField(domain.ToolPhantombuster, field)
	}
	return nil
}

func (f *PhantombusterFilters) Map() map[string]string {
	return map[string]string{
		"searchUrl":        f.SearchURL,
		"numberOfProfiles": f.NumberOfProfiles,
		"connectionDegree": f.ConnectionDegree,
		"sessionCookie":    f.SessionCookie,
	}
}

func (f *PhantombusterFilters) Fields() []Field {
	return []Field{
		{Key: "searchUrl", Label: "LinkedIn Search URL", Kind: KindInput, Placeholder: "https://www.linkedin.com/search/results/people/?keywords=..."},
		{Key: "numberOfProfiles", Label: "Profiles", Kind: KindSelect, Options: opts("50", "50", "100", "100", "250", "250", "500", "500")},
		{Key: "connectionDegree", Label: "Connection Degree", Kind: KindSelect, Options: opts("1st", "1st", "2nd", "2nd", "3rd", "3rd+")},
		{Key: "sessionCookie", Label: "li_at Session Cookie", Kind: KindInput, Sensitive: true},
	}
}
