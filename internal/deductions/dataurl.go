package deductions

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ParseDataURL decodes a "data:<mime>;base64,<payload>" document.
func ParseDataURL(s string) (Attachment, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Attachment{}, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Attachment{}, errors.New("data URL has no payload")
	}
	mime, enc, ok := strings.Cut(meta, ";")
	if !ok || !strings.EqualFold(enc, "base64") {
		return Attachment{}, errors.New("data URL must be base64 encoded")
	}
	if mime == "" || !strings.Contains(mime, "/") {
		return Attachment{}, errors.New("data URL has no MIME type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Attachment{}, errors.New("data URL payload is not valid base64")
	}
	if len(data) == 0 {
		return Attachment{}, errors.New("data URL payload is empty")
	}
	return Attachment{MIMEType: strings.ToLower(mime), Data: data}, nil
}
