// Package validator checks request structs against `validate` tags and
// reports failures as a field-to-message map keyed by the JSON field name.
package validator
