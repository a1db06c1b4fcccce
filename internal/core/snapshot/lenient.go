package snapshot

import (
	"encoding/json"
	"reflect"
	"strings"
)

// decodeFields fills the tagged fields of the struct dst points to from the
// JSON object data, one field at a time. A value that does not decode into
// its field leaves the field at its zero value, which the record converters
// turn into the attribute's default. Only data that is not an object fails.
func decodeFields(data []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fill(raw, reflect.ValueOf(dst).Elem())
	return nil
}

func fill(raw map[string]json.RawMessage, v reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			fill(raw, v.Field(i))
			continue
		}

		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		msg, ok := raw[name]
		if !ok {
			continue
		}
		field := reflect.New(sf.Type)
		if err := json.Unmarshal(msg, field.Interface()); err != nil {
			continue
		}
		v.Field(i).Set(field.Elem())
	}
}

// UnmarshalJSON decodes r, defaulting attributes with malformed values.
func (r *TaskRecord) UnmarshalJSON(data []byte) error { return decodeFields(data, r) }

// UnmarshalJSON decodes r, defaulting attributes with malformed values.
func (r *CategoryRecord) UnmarshalJSON(data []byte) error { return decodeFields(data, r) }

// UnmarshalJSON decodes r, defaulting attributes with malformed values.
func (r *NoteRecord) UnmarshalJSON(data []byte) error { return decodeFields(data, r) }

// UnmarshalJSON decodes r, defaulting attributes with malformed values.
func (r *EffortRecord) UnmarshalJSON(data []byte) error { return decodeFields(data, r) }

// UnmarshalJSON decodes r, defaulting attributes with malformed values.
func (r *RecurrenceRecord) UnmarshalJSON(data []byte) error { return decodeFields(data, r) }
