package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"smartos-inventory/internal/domain"
)

// VMAdmCodec decodes the output of `vmadm lookup -j`
type VMAdmCodec struct {
	// AllowSingle accepts a bare object as a one-guest list.
	// Single-host lookups may return either shape.
	AllowSingle bool
}

// NewVMAdmCodec creates a new vmadm payload codec
func NewVMAdmCodec(allowSingle bool) *VMAdmCodec {
	return &VMAdmCodec{AllowSingle: allowSingle}
}

// Format returns the codec format identifier
func (c *VMAdmCodec) Format() string {
	return "vmadm-json"
}

// Parse decodes the payload into guest records in payload order.
// An empty list is valid.
func (c *VMAdmCodec) Parse(r io.Reader) ([]domain.GuestRecord, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var top any
	if err := decoder.Decode(&top); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.PayloadFormatError{Reason: "empty payload"}
		}
		return nil, &domain.PayloadFormatError{Reason: "invalid JSON", Err: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &domain.PayloadFormatError{Reason: "unexpected data after JSON value"}
	}

	var items []any
	switch v := top.(type) {
	case []any:
		items = v
	case map[string]any:
		if !c.AllowSingle {
			return nil, &domain.PayloadFormatError{Reason: "top level is an object, expected a list"}
		}
		items = []any{v}
	default:
		return nil, &domain.PayloadFormatError{Reason: fmt.Sprintf("top level is %s, expected a list", jsonKind(top))}
	}

	records := make([]domain.GuestRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &domain.PayloadFormatError{Reason: fmt.Sprintf("element %d is %s, expected an object", i, jsonKind(item))}
		}
		rec, err := decodeGuest(i, obj)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// decodeGuest validates one payload object and resolves its name
func decodeGuest(index int, obj map[string]any) (domain.GuestRecord, error) {
	rec := domain.GuestRecord{Raw: obj}

	var err error
	if rec.Hostname, err = optionalString(index, obj, domain.FieldHostname); err != nil {
		return rec, err
	}
	if rec.Alias, err = optionalString(index, obj, domain.FieldAlias); err != nil {
		return rec, err
	}
	if rec.Brand, err = optionalString(index, obj, domain.FieldBrand); err != nil {
		return rec, err
	}

	name, ok := domain.ResolveName(rec.Hostname, rec.Alias)
	if !ok {
		return rec, &domain.IncompleteRecordError{Index: index, Reason: "neither hostname nor alias is set"}
	}
	rec.Name = name

	if nics, present := obj[domain.FieldNICs]; present && nics != nil {
		// Round-trip through JSON so the NIC struct tags do the field work
		data, err := json.Marshal(nics)
		if err != nil {
			return rec, &domain.PayloadFormatError{Reason: fmt.Sprintf("element %d nics", index), Err: err}
		}
		if err := json.Unmarshal(data, &rec.NICs); err != nil {
			return rec, &domain.PayloadFormatError{Reason: fmt.Sprintf("element %d nics", index), Err: err}
		}
	}

	return rec, nil
}

// optionalString returns the string at key, or "" when the key is absent or null
func optionalString(index int, obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.PayloadFormatError{Reason: fmt.Sprintf("element %d field %q is %s, expected a string", index, key, jsonKind(v))}
	}
	return s, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case json.Number, float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
