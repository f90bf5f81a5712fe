package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "ctc-budget-checker/internal/common/errors"
	"ctc-budget-checker/internal/common/validation"
)

// PayloadDecoder turns a raw request body into a CheckRequest. Both fields
// may arrive as JSON strings or JSON numbers; null and absent fields read
// as empty.
type PayloadDecoder struct {
	validator *validation.Validator
}

// NewPayloadDecoder uses v to check field types. A nil v skips the check
// and treats every non-string, non-number value as malformed.
func NewPayloadDecoder(v *validation.Validator) *PayloadDecoder {
	return &PayloadDecoder{validator: v}
}

// Decode never fails with a transport error. Bodies that are not a JSON
// object come back as a MissingParameters error, fields of the wrong JSON
// type as InvalidNumberFormat.
func (d *PayloadDecoder) Decode(data []byte) (CheckRequest, *apperrors.StandardError) {
	doc, err := decodeObject(data)
	if err != nil {
		return CheckRequest{}, apperrors.NewMissingParametersError(err.Error())
	}
	return d.DecodeMap(doc)
}

// DecodeMap is Decode for an already decoded JSON object, such as job variables.
func (d *PayloadDecoder) DecodeMap(doc map[string]interface{}) (CheckRequest, *apperrors.StandardError) {
	fields := make(map[string]interface{}, 2)
	for _, key := range []string{"expected_ctc", "max_budget"} {
		if v, ok := doc[key]; ok && v != nil {
			fields[key] = v
		}
	}

	if d.validator != nil {
		result, err := d.validator.Validate(fields)
		if err != nil {
			return CheckRequest{}, apperrors.NewServerError(err)
		}
		if !result.Valid {
			return CheckRequest{}, apperrors.NewInvalidNumberFormatError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	expected, err := fieldString(fields, "expected_ctc")
	if err != nil {
		return CheckRequest{}, apperrors.NewInvalidNumberFormatError(err.Error())
	}
	maxBudget, err := fieldString(fields, "max_budget")
	if err != nil {
		return CheckRequest{}, apperrors.NewInvalidNumberFormatError(err.Error())
	}
	return CheckRequest{ExpectedCTC: expected, MaxBudget: maxBudget}, nil
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("request body is not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("request body is null")
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return doc, nil
}

func fieldString(fields map[string]interface{}, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return FormatLPA(v), nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	default:
		return "", fmt.Errorf("%s: expected string or number, got %T", key, v)
	}
}
