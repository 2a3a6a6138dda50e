// Package validate provides struct-tag validation for request inputs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	numeric             any number
//	date                "YYYY-MM-DD" calendar date
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	in=a,b,c            value must be one of the listed items
//	confirmed           value must equal a sibling field named <field>_confirmation
//
// Example:
//
//	type Input struct {
//	    Status    string `json:"status"     validate:"required,in=a,b,c"`
//	    OrderDate string `json:"order_date" validate:"required,date"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		for _, rule := range splitRules(tag) {
			if msg := apply(rule, value, rv, field.Name); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether the error map from Struct is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// MinLength checks a single string value against a minimum length. Used for
// ad-hoc checks such as the 6-character password floor.
func MinLength(s string, n int) bool { return len([]rune(s)) >= n }

// Date reports whether s is a valid "YYYY-MM-DD" calendar date.
func Date(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ─── Rule application ─────────────────────────────────────────────────────────

func apply(rule string, value, parent reflect.Value, fieldName string) string {
	name, arg, _ := strings.Cut(rule, "=")

	switch name {
	case "required":
		if isEmpty(value) {
			return "is required"
		}
	case "numeric":
		if !isNumeric(value) {
			return "must be a number"
		}
	case "date":
		if s, ok := asString(value); !ok || !Date(s) {
			return "must be a YYYY-MM-DD date"
		}
	case "min":
		if msg := checkBound(value, arg, true); msg != "" {
			return msg
		}
	case "max":
		if msg := checkBound(value, arg, false); msg != "" {
			return msg
		}
	case "in":
		s, _ := asString(value)
		for _, item := range strings.Split(arg, ",") {
			if s == item {
				return ""
			}
		}
		return fmt.Sprintf("must be one of: %s", arg)
	case "confirmed":
		sibling := parent.FieldByName(fieldName + "Confirmation")
		if !sibling.IsValid() || !reflect.DeepEqual(value.Interface(), sibling.Interface()) {
			return "confirmation does not match"
		}
	}
	return ""
}

func checkBound(value reflect.Value, arg string, isMin bool) string {
	limit, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return ""
	}

	var got float64
	switch value.Kind() {
	case reflect.String:
		got = float64(len([]rune(value.String())))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		got = float64(value.Int())
	case reflect.Float32, reflect.Float64:
		got = value.Float()
	default:
		return ""
	}

	if isMin && got < limit {
		return fmt.Sprintf("must be at least %s", arg)
	}
	if !isMin && got > limit {
		return fmt.Sprintf("must be at most %s", arg)
	}
	return ""
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// splitRules splits the tag on commas, but keeps the argument list of an
// in=... rule intact (its items are comma-separated too).
func splitRules(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(rules) > 0 {
			last := rules[len(rules)-1]
			if strings.Contains(last, "=") && isRuleArg(part) {
				rules[len(rules)-1] = last + "," + part
				continue
			}
		}
		rules = append(rules, part)
	}
	return rules
}

// isRuleArg reports whether a comma-separated fragment is a continuation of
// the previous rule's argument rather than a rule name of its own.
func isRuleArg(s string) bool {
	switch strings.SplitN(s, "=", 2)[0] {
	case "required", "numeric", "date", "min", "max", "in", "confirmed":
		return false
	}
	return true
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.String:
		_, err := strconv.ParseFloat(v.String(), 64)
		return err == nil
	}
	return false
}

func asString(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.String {
		return v.String(), true
	}
	return "", false
}
