package report

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseStructured reads a {"sections":[{"heading":..,"lines":[..]}]} payload.
// It reports false when raw is not such a document or holds no sections, so
// callers can fall back to text sectioning.
func ParseStructured(raw string) ([]Section, bool) {
	payload := stripCodeFence(raw)
	if payload == "" || !gjson.Valid(payload) {
		return nil, false
	}
	items := gjson.Get(payload, "sections")
	if !items.IsArray() {
		return nil, false
	}

	var sections []Section
	items.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		section := Section{Heading: cleanHeading(item.Get("heading").String())}
		lines := item.Get("lines")
		if lines.IsArray() {
			for _, l := range lines.Array() {
				if text := strings.TrimSpace(l.String()); text != "" {
					section.BodyLines = append(section.BodyLines, asBullet(text))
				}
			}
		} else if text := strings.TrimSpace(lines.String()); text != "" {
			section.BodyLines = append(section.BodyLines, asBullet(text))
		}
		sections = append(sections, section)
		return true
	})
	if len(sections) == 0 {
		return nil, false
	}
	return sections, true
}

// models often wrap JSON in a ```json fence even when asked not to
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func asBullet(text string) string {
	if strings.HasPrefix(text, Bullet) {
		return text
	}
	if rewritten := rewriteBullet(text); rewritten != text {
		return rewritten
	}
	return Bullet + " " + text
}
