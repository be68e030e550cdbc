// Package merge combines freshly normalized records with stored records
// without ever corrupting identity or administrative fields.
//
// Merging is first-writer-wins: a field is overwritten only if the
// stored value is currently empty and the incoming value is not.
// Enrichment passes run repeatedly, so the operation must be idempotent
// and non-regressive: fields already populated never change, even when
// the incoming record disagrees.
package merge

import (
	"reflect"
	"strings"

	"github.com/hvkurs/kursmap/pkg/catalogs"
)

// ImmutableTemplateFields are the identity/administrative template
// fields that no merge may touch, keyed by json tag name.
var ImmutableTemplateFields = map[string]struct{}{
	"id":                {},
	"name":              {},
	"shortName":         {},
	"category":          {},
	"courseResponsible": {},
	"baseTemplateIds":   {},
	"sourceFiles":       {},
}

// metadataFields carry mutation bookkeeping. They are stamped by the
// caller when a merge actually changed something, never copied from the
// incoming record.
var metadataFields = map[string]struct{}{
	"lastModifiedBy": {},
	"lastModified":   {},
}

// Templates merges an incoming template into a copy of the original and
// reports whether any field changed. Callers update mutation metadata
// only when changed is true, avoiding timestamp churn on no-op passes.
//
// A composed template (non-empty baseTemplateIds) is a logical
// alias/union of its bases, not an independently described entity, and
// is returned unchanged.
func Templates(original, incoming *catalogs.Template) (*catalogs.Template, bool) {
	merged := original.Copy()
	if incoming == nil || original.IsComposed() {
		return merged, false
	}

	changed := fillEmptyFields(
		reflect.ValueOf(merged).Elem(),
		reflect.ValueOf(incoming).Elem(),
		ImmutableTemplateFields,
	)
	return merged, changed
}

// fillEmptyFields walks the struct fields of dst and src (same type),
// overwriting a dst field only when it is empty, the src field is not,
// and the field is neither immutable nor metadata. Returns whether any
// field was written.
func fillEmptyFields(dst, src reflect.Value, immutable map[string]struct{}) bool {
	changed := false
	t := dst.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := jsonTagName(t.Field(i))
		if tag == "" || tag == "-" {
			continue
		}
		if _, skip := immutable[tag]; skip {
			continue
		}
		if _, skip := metadataFields[tag]; skip {
			continue
		}

		dstField := dst.Field(i)
		srcField := src.Field(i)
		if !dstField.CanSet() {
			continue
		}
		if isEmpty(dstField) && !isEmpty(srcField) {
			dstField.Set(srcField)
			changed = true
		}
	}
	return changed
}

// isEmpty reports whether a field value counts as empty for merge
// purposes: empty string, empty or nil sequence, or nil pointer.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.Len() == 0
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// jsonTagName extracts the bare json tag name of a struct field.
func jsonTagName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
