package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Format is the encoding of a scenario file.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from the file extension. Anything that is not
// .toml is read as JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// tomlScenario is the TOML layout: an array of [[record]] tables.
type tomlScenario struct {
	Records []map[string]any `toml:"record"`
}

// Load reads and parses a scenario file. A missing file or malformed content
// is an error; problems inside individual records are not, they surface
// later when each record is decoded.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	records, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Parse decodes scenario content in the given format.
func Parse(data []byte, format Format) ([]Record, error) {
	var raw []map[string]any

	switch format {
	case FormatTOML:
		var doc tomlScenario
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		raw = doc.Records
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: trailing data after record list", ErrMalformed)
		}
	}

	records := make([]Record, 0, len(raw))
	for i, fields := range raw {
		if fields == nil {
			fields = map[string]any{}
		}
		records = append(records, Record{Index: i + 1, Fields: fields})
	}
	return records, nil
}

// Split partitions records into definitions, commands and unclassified
// records, each keeping input order.
func Split(records []Record) (defs, cmds, unknown []Record) {
	for _, r := range records {
		switch r.Kind() {
		case KindDefinition:
			defs = append(defs, r)
		case KindCommand:
			cmds = append(cmds, r)
		default:
			unknown = append(unknown, r)
		}
	}
	return defs, cmds, unknown
}
