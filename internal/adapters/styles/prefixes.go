package styles

import "strings"

// propertyPrefixes lists the vendor prefixes emitted ahead of a property.
var propertyPrefixes = map[string][]string{
	"appearance":           {"-webkit-", "-moz-"},
	"backdrop-filter":      {"-webkit-"},
	"box-decoration-break": {"-webkit-"},
	"flex":                 {"-ms-"},
	"hyphens":              {"-webkit-", "-ms-"},
	"mask-image":           {"-webkit-"},
	"text-size-adjust":     {"-webkit-", "-ms-"},
	"user-select":          {"-webkit-", "-moz-", "-ms-"},
}

// valuePrefixes lists legacy values emitted ahead of property:value.
var valuePrefixes = map[declaration][]string{
	{property: "display", value: "flex"}:        {"-webkit-box", "-ms-flexbox"},
	{property: "display", value: "inline-flex"}: {"-webkit-inline-box", "-ms-inline-flexbox"},
	{property: "position", value: "sticky"}:     {"-webkit-sticky"},
}

// prefixed returns d preceded by its vendor-prefixed variants.
func prefixed(d declaration) []declaration {
	var out []declaration
	for _, prefix := range propertyPrefixes[d.property] {
		out = append(out, declaration{property: prefix + d.property, value: d.value})
	}
	for _, v := range valuePrefixes[declaration{property: d.property, value: strings.ToLower(d.value)}] {
		out = append(out, declaration{property: d.property, value: v})
	}
	return append(out, d)
}

// fixFlex applies the flexbugs shorthand fixes: a bare flex-grow gets
// "1 0%", a grow/shrink pair gets "0%", and a unitless zero basis becomes "0%".
func fixFlex(d declaration) string {
	if unprefixed(d.property) != "flex" {
		return d.value
	}
	important := ""
	value := d.value
	if i := strings.Index(value, "!"); i >= 0 {
		value, important = value[:i], value[i:]
	}

	parts := strings.Fields(value)
	if len(parts) == 0 || len(parts) > 3 {
		return d.value
	}
	for _, part := range parts[:min(len(parts), 2)] {
		if !isNumber(part) {
			return d.value
		}
	}

	switch len(parts) {
	case 1:
		parts = append(parts, "1", "0%")
	case 2:
		parts = append(parts, "0%")
	case 3:
		if parts[2] == "0" {
			parts[2] = "0%"
		}
	}
	return strings.Join(parts, " ") + important
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}

// unprefixed strips a vendor prefix such as "-ms-" from a property name.
func unprefixed(property string) string {
	if strings.HasPrefix(property, "-") {
		if i := strings.IndexByte(property[1:], '-'); i >= 0 {
			return property[i+2:]
		}
	}
	return property
}
