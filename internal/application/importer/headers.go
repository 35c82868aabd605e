package importer

import "strings"

// A matcher binds a normalized spreadsheet header to a record field.
// Matchers are evaluated in order and the first match wins for a header;
// the first column bound to a field wins if several headers match it.
type matcher struct {
	field string
	match func(h string) bool
}

func equals(want string) func(string) bool {
	return func(h string) bool { return h == want }
}

func containsAll(parts ...string) func(string) bool {
	return func(h string) bool {
		for _, p := range parts {
			if !strings.Contains(h, p) {
				return false
			}
		}
		return true
	}
}

var headerMatchers = []matcher{
	{"title", containsAll("project", "name")},
	{"bu", equals("bu")},
	{"site", equals("site")},
	{"owner_name", containsAll("owner")},
	{"status", equals("status")},
	{"priority", equals("priority")},
	{"target_close_date", containsAll("closing", "date")},
	{"description", equals("description")},
	{"air_flow_m3h", containsAll("air flow")},
	{"number_of_units", containsAll("units")},
	// the source sheets spell it "DSS / DSP desing", so match loosely
	{"dss_dsp_design", containsAll("dss")},
	{"transfer_cost_without_oh_profit_8_per_u", containsAll("transfer", "without")},
	{"transfer_cost_complete_per_u", containsAll("transfer", "complete")},
	{"vortice_price", containsAll("vortice")},
	{"selling_price", containsAll("selling")},
	{"comments", equals("comments")},
}

// normalizeHeader trims, lowercases and collapses whitespace.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// MapColumns builds the field → column-index map from the header row.
// Unmatched headers are ignored.
func MapColumns(headers []string) map[string]int {
	cm := make(map[string]int)
	for idx, raw := range headers {
		h := normalizeHeader(raw)
		if h == "" {
			continue
		}
		for _, m := range headerMatchers {
			if m.match(h) {
				if _, bound := cm[m.field]; !bound {
					cm[m.field] = idx
				}
				break
			}
		}
	}
	return cm
}
