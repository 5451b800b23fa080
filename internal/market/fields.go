package market

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// pathValue returns the first path that resolves to a non-empty value in doc.
// Unknown keys and out-of-range indexes count as absent.
func pathValue(doc any, paths ...string) any {
	for _, p := range paths {
		v, err := jsonpath.Get(p, doc)
		if err != nil || v == nil {
			continue
		}
		// Yahoo wraps numbers as {"raw": 1.2, "fmt": "1.20"} and sends {} for missing ones.
		if m, ok := v.(map[string]any); ok {
			if len(m) == 0 {
				continue
			}
			if raw, ok := m["raw"]; ok {
				if raw == nil {
					continue
				}
				v = raw
			} else if _, ok := m["fmt"]; ok {
				continue
			}
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// pathDecimal reads a number at the first resolvable path.
func pathDecimal(doc any, paths ...string) decimal.NullDecimal {
	switch n := pathValue(doc, paths...).(type) {
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(n))
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return decimal.NewNullDecimal(d)
		}
	}
	return decimal.NullDecimal{}
}

// pathString reads text at the first resolvable path; numbers are formatted.
func pathString(doc any, paths ...string) string {
	switch v := pathValue(doc, paths...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case bool:
		return fmt.Sprint(v)
	}
	return ""
}

// pathInt reads an integer count, 0 when absent.
func pathInt(doc any, paths ...string) int {
	if f, ok := pathValue(doc, paths...).(float64); ok {
		return int(f)
	}
	return 0
}
