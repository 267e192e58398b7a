// Package scanner sits at the scan-decoder boundary: raw payloads come
// in from whatever produced the scan, structured products come out.
package scanner

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
)

// ErrUnreadableCode is the fixed message for any payload that fails
// structural decoding.
var ErrUnreadableCode = errors.New("Unable to read the product code.")

// Decode parses a scanned payload into a product descriptor. Any
// malformed payload, unknown field, or missing product id yields
// ErrUnreadableCode; callers never see the raw decode failure.
func Decode(raw []byte) (domain.Product, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var product domain.Product
	if err := dec.Decode(&product); err != nil {
		return domain.Product{}, ErrUnreadableCode
	}
	if product.ID <= 0 || product.Name == "" {
		return domain.Product{}, ErrUnreadableCode
	}
	return product, nil
}
