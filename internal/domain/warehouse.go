package domain

import "strings"

// WarehouseProfile describes a known fulfillment facility. Color is the map
// marker color assigned to the facility in the visualization layer.
type WarehouseProfile struct {
	Code        string `json:"code"`
	Zip         string `json:"zipcode"`
	DisplayName string `json:"name"`
	Color       string `json:"color"`
}

// UnknownWarehouse is the sentinel code returned when no resolution rule matches.
const UnknownWarehouse = "Unknown"

// warehouses is the static facility reference table. Codes and postal codes
// come from the operations team; they change rarely enough that a code change
// is the update mechanism.
var warehouses = map[string]WarehouseProfile{
	"NJ9":     {Code: "NJ9", Zip: "07114", DisplayName: "Newark, NJ", Color: "#FF6B6B"},
	"NJ8":     {Code: "NJ8", Zip: "07201", DisplayName: "Elizabeth, NJ", Color: "#4ECDC4"},
	"NJ7":     {Code: "NJ7", Zip: "08817", DisplayName: "Edison, NJ", Color: "#45B7D1"},
	"NJ-Main": {Code: "NJ-Main", Zip: "07306", DisplayName: "Jersey City, NJ", Color: "#96CEB4"},
	"TX8828":  {Code: "TX8828", Zip: "75261", DisplayName: "Dallas, TX", Color: "#FFEAA7"},
	"TX8829":  {Code: "TX8829", Zip: "76155", DisplayName: "Fort Worth, TX", Color: "#DDA0DD"},
	"TX-DFW":  {Code: "TX-DFW", Zip: "75063", DisplayName: "Irving, TX", Color: "#98D8C8"},
	"CA-LA":   {Code: "CA-LA", Zip: "90058", DisplayName: "Los Angeles, CA", Color: "#F7DC6F"},
	"CA-SF":   {Code: "CA-SF", Zip: "94080", DisplayName: "South San Francisco, CA", Color: "#BB8FCE"},
	"WNT485":  {Code: "WNT485", Zip: "90248", DisplayName: "Gardena, CA", Color: "#85C1E9"},
	"WNT486":  {Code: "WNT486", Zip: "91761", DisplayName: "Ontario, CA", Color: "#F8C471"},
	"WNT487":  {Code: "WNT487", Zip: "92408", DisplayName: "San Bernardino, CA", Color: "#82E0AA"},
	"IL-CHI":  {Code: "IL-CHI", Zip: "60638", DisplayName: "Chicago, IL", Color: "#D7BDE2"},
	"IL9":     {Code: "IL9", Zip: "60106", DisplayName: "Bensenville, IL", Color: "#A9DFBF"},
	"GA-ATL":  {Code: "GA-ATL", Zip: "30349", DisplayName: "Atlanta, GA", Color: "#F9E79F"},
	"FL-MIA":  {Code: "FL-MIA", Zip: "33166", DisplayName: "Miami, FL", Color: "#AED6F1"},

	UnknownWarehouse: {Code: UnknownWarehouse, Zip: "07114", DisplayName: "Unknown Location", Color: "#BDC3C7"},
}

// fuzzyRule pairs a predicate over the uppercased label with the facility code
// to fall back to when the predicate matches.
type fuzzyRule struct {
	match func(string) bool
	code  string
}

// fuzzyRules are evaluated in order; the first match wins. The order is a
// contract: a label like "CACHI" must resolve to CA-LA, not IL-CHI, because
// the CA rule comes first. Covered by TestResolveWarehouse_RuleOrder.
var fuzzyRules = []fuzzyRule{
	{func(s string) bool { return strings.HasPrefix(s, "NJ") }, "NJ9"},
	{func(s string) bool { return strings.HasPrefix(s, "TX") }, "TX8828"},
	{func(s string) bool { return strings.HasPrefix(s, "CA") || strings.Contains(s, "LA") }, "CA-LA"},
	{func(s string) bool { return strings.HasPrefix(s, "WNT") }, "WNT485"},
	{func(s string) bool { return strings.HasPrefix(s, "IL") || strings.Contains(s, "CHI") }, "IL-CHI"},
	{func(s string) bool { return strings.Contains(s, "NYC") }, "NJ-Main"},
}

// ResolveWarehouse maps a raw warehouse label to a facility profile. Exact
// codes match case-sensitively; otherwise the fuzzy rules run against the
// uppercased label. Resolution never fails: unmatched labels get the Unknown
// profile.
func ResolveWarehouse(label string) WarehouseProfile {
	name := strings.TrimSpace(label)
	if name == "" {
		return warehouses[UnknownWarehouse]
	}

	if profile, ok := warehouses[name]; ok {
		return profile
	}

	upper := strings.ToUpper(name)
	for _, rule := range fuzzyRules {
		if rule.match(upper) {
			return warehouses[rule.code]
		}
	}

	return warehouses[UnknownWarehouse]
}

// KnownWarehouseCodes returns the facility codes in the reference table,
// excluding the Unknown sentinel.
func KnownWarehouseCodes() []string {
	codes := make([]string, 0, len(warehouses)-1)
	for code := range warehouses {
		if code == UnknownWarehouse {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
