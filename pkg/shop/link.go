package shop

import "strings"

// ParseNextLink extracts the rel="next" URL from a Link response header.
// The header carries comma-separated entries of the form
//
//	<https://shop.example.com/admin/api/orders.json?page_info=abc>; rel="next"
//
// Returns "" when no next entry is present.
func ParseNextLink(header string) string {
	if header == "" {
		return ""
	}

	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}

		isNext := false
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}

		target := strings.TrimSpace(parts[0])
		if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
			return target[1 : len(target)-1]
		}
	}

	return ""
}
