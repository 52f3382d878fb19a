package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FormatSeparator joins date formats on the wire. The first format is used for output,
// every format is accepted on input.
const FormatSeparator = "||"

// ErrSeparatorInFormat is returned for a format that embeds FormatSeparator. The wire
// format has no escaping, so such a list cannot be encoded without changing its meaning.
var ErrSeparatorInFormat = errors.New("date format contains separator " + FormatSeparator)

func JoinFormats(formats []string) (string, error) {
	for i, f := range formats {
		if strings.Contains(f, FormatSeparator) {
			return "", fmt.Errorf("format[%d] %q: %w", i, f, ErrSeparatorInFormat)
		}
	}
	return strings.Join(formats, FormatSeparator), nil
}

func SplitFormats(s string) []string {
	return strings.Split(s, FormatSeparator)
}

// EncodeFormats writes a nil list as JSON null, never as an empty string.
func EncodeFormats(formats []string) (json.RawMessage, error) {
	if formats == nil {
		return json.RawMessage("null"), nil
	}
	s, err := JoinFormats(formats)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode formats: %w", err)
	}
	return b, nil
}

// DecodeFormats reads a JSON string or null; null yields a nil list.
func DecodeFormats(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode formats: %w", err)
	}
	return SplitFormats(s), nil
}
