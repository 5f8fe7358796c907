// Package qr renders ticket QR codes as PNG data URLs.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/bus-ticketing/internal/model"
)

const dataURLPrefix = "data:image/png;base64,"

// ErrNotPNGDataURL is returned by DecodeDataURL for values that are not
// base64 PNG data URLs.
var ErrNotPNGDataURL = errors.New("not a png data url")

// Encoder turns a ticket payload into a PNG data URL.
type Encoder struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewEncoder returns an Encoder producing 256px images with medium error
// correction.
func NewEncoder() *Encoder {
	return &Encoder{Size: 256, Level: qrcode.Medium}
}

// Encode serialises p as JSON and renders it as a QR image.
func (e *Encoder) Encode(p model.QRPayload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(body), e.Level, e.Size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// DecodeDataURL returns the PNG bytes held in a data URL produced by Encode.
func DecodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, ErrNotPNGDataURL
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, dataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPNGDataURL, err)
	}
	return b, nil
}
