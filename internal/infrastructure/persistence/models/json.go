package models

import "encoding/json"

// toJSON marshals a value into a jsonb column string. Empty slices and nil
// pointers become the empty string so the column stays NULL.
func toJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(data)
	if s == "null" || s == "[]" || s == "{}" {
		return ""
	}
	return s
}

// fromJSON unmarshals a jsonb column string into out. An empty column leaves
// out untouched.
func fromJSON(s string, out any) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), out)
}
