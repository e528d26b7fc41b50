package cmdutils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var ErrInvalidField = errors.New("fields must be given as key=value")

// ParseFields turns key=value pairs into a map. Later keys win.
func ParseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, p)
		}
		fields[k] = v
	}

	return fields, nil
}

// DecodeFields overlays fields onto into. Keys that do not match a field of
// into are an error.
func DecodeFields(fields map[string]any, into any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           into,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("decoding fields: %w", err)
	}

	return nil
}

// ReadLines reads n lines from r without their line endings. Missing lines
// read as empty.
func ReadLines(r io.Reader, n int) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, n)
	for i := range lines {
		line, err := br.ReadString('\n')
		lines[i] = strings.TrimRight(line, "\r\n")
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
	}

	return lines, nil
}
