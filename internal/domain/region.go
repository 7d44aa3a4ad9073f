package domain

// TotalRegion is the code of the synthetic aggregate series.
const TotalRegion = "TOTAL"

// Region is immutable reference data identifying one tracked series.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Regions is the reference list of US states, DC and territories, in code order.
var Regions = []Region{
	{"AK", "Alaska"},
	{"AL", "Alabama"},
	{"AR", "Arkansas"},
	{"AS", "American Samoa"},
	{"AZ", "Arizona"},
	{"CA", "California"},
	{"CO", "Colorado"},
	{"CT", "Connecticut"},
	{"DC", "District of Columbia"},
	{"DE", "Delaware"},
	{"FL", "Florida"},
	{"GA", "Georgia"},
	{"GU", "Guam"},
	{"HI", "Hawaii"},
	{"IA", "Iowa"},
	{"ID", "Idaho"},
	{"IL", "Illinois"},
	{"IN", "Indiana"},
	{"KS", "Kansas"},
	{"KY", "Kentucky"},
	{"LA", "Louisiana"},
	{"MA", "Massachusetts"},
	{"MD", "Maryland"},
	{"ME", "Maine"},
	{"MI", "Michigan"},
	{"MN", "Minnesota"},
	{"MO", "Missouri"},
	{"MP", "Northern Mariana Islands"},
	{"MS", "Mississippi"},
	{"MT", "Montana"},
	{"NC", "North Carolina"},
	{"ND", "North Dakota"},
	{"NE", "Nebraska"},
	{"NH", "New Hampshire"},
	{"NJ", "New Jersey"},
	{"NM", "New Mexico"},
	{"NV", "Nevada"},
	{"NY", "New York"},
	{"OH", "Ohio"},
	{"OK", "Oklahoma"},
	{"OR", "Oregon"},
	{"PA", "Pennsylvania"},
	{"PR", "Puerto Rico"},
	{"RI", "Rhode Island"},
	{"SC", "South Carolina"},
	{"SD", "South Dakota"},
	{"TN", "Tennessee"},
	{"TX", "Texas"},
	{"UT", "Utah"},
	{"VA", "Virginia"},
	{"VI", "U.S. Virgin Islands"},
	{"VT", "Vermont"},
	{"WA", "Washington"},
	{"WI", "Wisconsin"},
	{"WV", "West Virginia"},
	{"WY", "Wyoming"},
}

var regionNames = func() map[string]string {
	m := make(map[string]string, len(Regions)+1)
	for _, r := range Regions {
		m[r.Code] = r.Name
	}
	m[TotalRegion] = "Total"
	return m
}()

// LookupRegion returns the reference entry for code. Codes outside the
// reference list are still tracked; their display name is the code itself.
func LookupRegion(code string) Region {
	if name, ok := regionNames[code]; ok {
		return Region{Code: code, Name: name}
	}
	return Region{Code: code, Name: code}
}

// RegionsIn returns the regions present in the store, reference regions first
// in reference order, then unknown codes sorted. The aggregate is excluded.
func RegionsIn(s *Store) []Region {
	present := make(map[string]bool)
	for _, code := range s.Regions() {
		if code != TotalRegion {
			present[code] = true
		}
	}

	out := make([]Region, 0, len(present))
	for _, r := range Regions {
		if present[r.Code] {
			out = append(out, r)
			delete(present, r.Code)
		}
	}
	for _, code := range s.Regions() {
		if present[code] {
			out = append(out, LookupRegion(code))
		}
	}
	return out
}
