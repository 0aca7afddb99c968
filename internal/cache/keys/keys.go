// Package keys builds deterministic cache keys from the parameters that
// affect a WMS GetFeatureInfo response.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key fingerprints one feature-info request. The readable prefix keeps keys
// debuggable; the xxhash suffix of the raw tuple guarantees any parameter
// difference yields a different key even after sanitization.
func Key(layers []string, bbox string, width, height, x, y int) string {
	layerPart := strings.Join(layers, ",")
	raw := strings.Join([]string{
		layerPart,
		strings.TrimSpace(bbox),
		strconv.Itoa(width),
		strconv.Itoa(height),
		strconv.Itoa(x),
		strconv.Itoa(y),
	}, "|")
	sum := xxhash.Sum64String(raw)

	layerSafe := sanitizeForKey(layerPart)
	bboxSafe := sanitizeForKey(bbox)

	const maxBBoxLen = 80
	if len(bboxSafe) > maxBBoxLen {
		bboxSafe = bboxSafe[:maxBBoxLen]
	}

	return fmt.Sprintf("fi:%s:%s:%dx%d:%d,%d:f=%016x",
		layerSafe, bboxSafe, width, height, x, y, sum)
}

func sanitizeForKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '.' || r == ',':
			out = r
		default:
			// any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
