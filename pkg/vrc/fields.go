package vrc

import "strings"

// FieldDelimiter separates the fields of the decoded text.
const FieldDelimiter = "|"

// MinFields is the smallest field count a vehicle record is accepted with.
const MinFields = 66

// FieldList holds the fields in payload order. Empty fields are kept.
type FieldList []string

// SplitFields splits text on FieldDelimiter without trimming or collapsing.
func SplitFields(text string) FieldList {
	return strings.Split(text, FieldDelimiter)
}

// ValidateFields fails with InsufficientFields below MinFields.
func ValidateFields(fields FieldList) error {
	if len(fields) < MinFields {
		return stageError(StageValidating, KindInsufficientFields, len(fields), nil)
	}
	return nil
}

// JoinFields is the inverse of SplitFields.
func JoinFields(fields FieldList) string {
	return strings.Join(fields, FieldDelimiter)
}
