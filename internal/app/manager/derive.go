package manager

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

// Sorted returns a copy of list ordered by the dotted JSON path field
// ("payeeName", "address.city"). Keys compare case-insensitively and ties keep
// their stored order. An empty field returns the list in stored order.
func Sorted(list []payee.Payee, field string, direction SortDirection) []payee.Payee {
	out := make([]payee.Payee, len(list))
	copy(out, list)
	if strings.TrimSpace(field) == "" || len(out) < 2 {
		return out
	}

	keys := make(map[int]string, len(out))
	idx := make([]int, len(out))
	for i := range out {
		idx[i] = i
		keys[i] = sortKey(out[i], field)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if direction == SortDescending {
			return ka > kb
		}
		return ka < kb
	})

	sorted := make([]payee.Payee, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func sortKey(p payee.Payee, field string) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return strings.ToLower(gjson.GetBytes(raw, field).String())
}

// Filter returns the payees matching criteria, preserving order.
func Filter(list []payee.Payee, criteria payee.Criteria) []payee.Payee {
	out := make([]payee.Payee, 0, len(list))
	for _, p := range list {
		if criteria.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
