package cvformat

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yoockh/cvstudio/internal/models"
)

// Normalize coerces a decoded model reply into the fixed CV shape.
// Missing values become "" or empty slices, never nil.
func Normalize(doc map[string]any) models.FormattedCV {
	header := asMap(doc["header"])
	pd := asMap(doc["personalDetails"])

	cv := models.FormattedCV{
		Header: models.Header{
			Name:     str(header["name"]),
			JobTitle: str(header["jobTitle"]),
			PhotoURL: str(header["photoUrl"]),
		},
		PersonalDetails: models.PersonalDetails{
			Nationality:   str(pd["nationality"]),
			Languages:     str(pd["languages"]),
			DOB:           str(first(pd, "dob", "dateOfBirth")),
			MaritalStatus: str(pd["maritalStatus"]),
		},
		Profile:    str(doc["profile"]),
		Experience: []models.Experience{},
		Education:  []models.Education{},
		KeySkills:  strList(doc["keySkills"]),
		Interests:  strList(doc["interests"]),
	}

	for _, m := range mapList(doc["experience"]) {
		cv.Experience = append(cv.Experience, models.Experience{
			JobTitle:         str(m["jobTitle"]),
			Company:          str(m["company"]),
			Location:         str(m["location"]),
			Dates:            str(first(m, "dates", "date")),
			Responsibilities: strList(m["responsibilities"]),
		})
	}
	for _, m := range mapList(doc["education"]) {
		cv.Education = append(cv.Education, models.Education{
			Institution: str(m["institution"]),
			Degree:      str(m["degree"]),
			Location:    str(m["location"]),
			Dates:       str(first(m, "dates", "date")),
		})
	}
	return cv
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// mapList accepts a list of objects or a single object.
func mapList(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{t}
	default:
		return nil
	}
}

// str stringifies scalars; lists are joined with ", ".
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s := str(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// strList accepts a list or a single string.
func strList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if s := str(it); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
