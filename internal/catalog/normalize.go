package catalog

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/garrettladley/shopsync/internal/apperr"
	go_json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// plainDecimal excludes exponent notation, which decimal accepts and then
// expands in time proportional to the exponent.
var plainDecimal = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

type rawProduct struct {
	ID       go_json.RawMessage `json:"id"`
	Title    go_json.RawMessage `json:"title"`
	Handle   go_json.RawMessage `json:"handle"`
	Variants go_json.RawMessage `json:"variants"`
}

type rawVariant struct {
	ID    go_json.RawMessage `json:"id"`
	Title go_json.RawMessage `json:"title"`
	Price go_json.RawMessage `json:"price"`
	SKU   go_json.RawMessage `json:"sku"`
}

// Normalize parses an authenticated product payload into its canonical form.
// Fields are checked in a fixed order and the first failure is returned.
func Normalize(body []byte) (Product, error) {
	if !isKind(body, '{') {
		return Product{}, apperr.Validation(apperr.ReasonMalformedJSON, "", fmt.Errorf("payload is not a JSON object"))
	}

	var raw rawProduct
	if err := go_json.Unmarshal(body, &raw); err != nil {
		return Product{}, apperr.Validation(apperr.ReasonMalformedJSON, "", err)
	}

	id, err := decodeID(raw.ID, "id")
	if err != nil {
		return Product{}, err
	}
	title, err := decodeString(raw.Title, "title")
	if err != nil {
		return Product{}, err
	}
	handle, err := decodeString(raw.Handle, "handle")
	if err != nil {
		return Product{}, err
	}
	if handle == "" {
		return Product{}, apperr.InvalidField("handle", "must not be empty")
	}

	if isAbsent(raw.Variants) {
		return Product{}, apperr.InvalidField("variants", "required")
	}
	if !isKind(raw.Variants, '[') {
		return Product{}, apperr.InvalidField("variants", "must be an array")
	}

	var elems []go_json.RawMessage
	if err := go_json.Unmarshal(raw.Variants, &elems); err != nil {
		return Product{}, apperr.InvalidField("variants", "%v", err)
	}
	if len(elems) == 0 {
		return Product{}, apperr.ErrNoVariants
	}

	product := Product{
		ID:       id,
		Title:    title,
		Handle:   handle,
		Variants: make([]Variant, 0, len(elems)),
	}
	for i, elem := range elems {
		v, err := normalizeVariant(elem, fmt.Sprintf("variants[%d]", i))
		if err != nil {
			return Product{}, err
		}
		v.ProductID = id
		product.Variants = append(product.Variants, v)
	}

	return product, nil
}

func normalizeVariant(data go_json.RawMessage, path string) (Variant, error) {
	if !isKind(data, '{') {
		return Variant{}, apperr.InvalidField(path, "must be an object")
	}

	var raw rawVariant
	if err := go_json.Unmarshal(data, &raw); err != nil {
		return Variant{}, apperr.InvalidField(path, "%v", err)
	}

	id, err := decodeID(raw.ID, path+".id")
	if err != nil {
		return Variant{}, err
	}
	title, err := decodeString(raw.Title, path+".title")
	if err != nil {
		return Variant{}, err
	}
	price, err := decodePrice(raw.Price, path+".price")
	if err != nil {
		return Variant{}, err
	}
	sku, err := decodeString(raw.SKU, path+".sku")
	if err != nil {
		return Variant{}, err
	}

	return Variant{ID: id, Title: title, Price: price, SKU: sku}, nil
}

// ParseMinorUnits converts a decimal major-unit amount such as "19.99" into
// minor units. Amounts with a fractional remainder after conversion are
// rejected rather than truncated.
func ParseMinorUnits(s string) (int64, error) {
	if !plainDecimal.MatchString(s) {
		return 0, fmt.Errorf("not a plain decimal number: %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a decimal number: %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("must not be negative: %q", s)
	}

	minor := d.Shift(minorUnitExponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("more than %d fractional digits: %q", minorUnitExponent, s)
	}
	if minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("out of range: %q", s)
	}
	return minor.IntPart(), nil
}

func decodePrice(raw go_json.RawMessage, field string) (int64, error) {
	if isAbsent(raw) {
		return 0, apperr.InvalidField(field, "required")
	}

	var s string
	switch {
	case isKind(raw, '"'):
		if err := go_json.Unmarshal(raw, &s); err != nil {
			return 0, apperr.InvalidField(field, "%v", err)
		}
	case isNumber(raw):
		s = string(bytes.TrimSpace(raw))
	default:
		return 0, apperr.InvalidField(field, "must be a string or number")
	}

	minor, err := ParseMinorUnits(s)
	if err != nil {
		return 0, apperr.InvalidField(field, "%v", err)
	}
	return minor, nil
}

// decodeID accepts a non-empty string or a non-negative JSON integer and
// returns its decimal string form.
func decodeID(raw go_json.RawMessage, field string) (string, error) {
	if isAbsent(raw) {
		return "", apperr.InvalidField(field, "required")
	}

	if isKind(raw, '"') {
		var s string
		if err := go_json.Unmarshal(raw, &s); err != nil {
			return "", apperr.InvalidField(field, "%v", err)
		}
		if s == "" {
			return "", apperr.InvalidField(field, "must not be empty")
		}
		return s, nil
	}

	if isNumber(raw) {
		trimmed := string(bytes.TrimSpace(raw))
		n, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return "", apperr.InvalidField(field, "must be a non-negative integer: %s", trimmed)
		}
		return strconv.FormatUint(n, 10), nil
	}

	return "", apperr.InvalidField(field, "must be a string or integer")
}

func decodeString(raw go_json.RawMessage, field string) (string, error) {
	if isAbsent(raw) {
		return "", apperr.InvalidField(field, "required")
	}
	if !isKind(raw, '"') {
		return "", apperr.InvalidField(field, "must be a string")
	}

	var s string
	if err := go_json.Unmarshal(raw, &s); err != nil {
		return "", apperr.InvalidField(field, "%v", err)
	}
	return s, nil
}

func isAbsent(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isKind(raw []byte, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}

func isNumber(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	c := trimmed[0]
	return c == '-' || (c >= '0' && c <= '9')
}
