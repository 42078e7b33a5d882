package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the wrapped form {"records": [...]} accepted next to a bare list.
type document struct {
	Records []RawRecord `json:"records" yaml:"records"`
}

// Decode parses raw rows from data in the given text format.
func Decode(format string, data []byte) ([]RawRecord, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCSV:
		return decodeCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(data []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var rows []RawRecord
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrDecode, err)
		}
		return rows, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	return doc.Records, nil
}

func decodeYAML(data []byte) ([]RawRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var rows []RawRecord
		if err := root.Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
		}
		return rows, nil
	}
	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
	}
	return doc.Records, nil
}

// CSV header aliases, matched case-insensitively.
var csvColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"birth_year":  "birth_year",
	"birth":       "birth_year",
	"born":        "birth_year",
	"death_year":  "death_year",
	"death":       "death_year",
	"died":        "death_year",
	"prominence":  "prominence",
	"score":       "prominence",
	"color":       "color",
	"colour":      "color",
	"description": "description",
	"tags":        "tags",
}

func decodeCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %w", ErrDecode, err)
	}

	columnMap := make(map[string]int)
	for i, col := range header {
		if name, ok := csvColumns[strings.ToLower(strings.TrimSpace(col))]; ok {
			columnMap[name] = i
		}
	}
	if _, ok := columnMap["name"]; !ok {
		return nil, fmt.Errorf("%w: csv: name column not found in %v", ErrDecode, header)
	}
	if _, ok := columnMap["birth_year"]; !ok {
		return nil, fmt.Errorf("%w: csv: birth_year column not found in %v", ErrDecode, header)
	}

	var rows []RawRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %w", ErrDecode, err)
		}
		row, err := csvRow(record, columnMap)
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %w", ErrDecode, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvRow(record []string, columnMap map[string]int) (RawRecord, error) {
	get := func(col string) string {
		i, ok := columnMap[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := RawRecord{
		ID:          get("id"),
		Name:        get("name"),
		Color:       get("color"),
		Description: get("description"),
	}
	var err error
	if row.BirthYear, err = ParseYear(get("birth_year")); err != nil {
		return RawRecord{}, fmt.Errorf("birth_year: %w", err)
	}
	if row.DeathYear, err = ParseYear(get("death_year")); err != nil {
		return RawRecord{}, fmt.Errorf("death_year: %w", err)
	}
	if p := get("prominence"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return RawRecord{}, fmt.Errorf("prominence: %w", err)
		}
		row.Prominence = &n
	}
	if tags := get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ";") {
			if t = strings.TrimSpace(t); t != "" {
				row.Tags = append(row.Tags, t)
			}
		}
	}
	return row, nil
}

// ParseYear parses "1815", "-428", "428 BC", "428 BCE" or "33 AD". An empty
// string yields nil.
func ParseYear(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	upper := strings.ToUpper(s)
	sign := 1
	switch {
	case strings.HasSuffix(upper, "BCE"):
		upper, sign = strings.TrimSuffix(upper, "BCE"), -1
	case strings.HasSuffix(upper, "BC"):
		upper, sign = strings.TrimSuffix(upper, "BC"), -1
	case strings.HasSuffix(upper, "CE"):
		upper = strings.TrimSuffix(upper, "CE")
	case strings.HasSuffix(upper, "AD"):
		upper = strings.TrimSuffix(upper, "AD")
	}
	y, err := strconv.Atoi(strings.TrimSpace(upper))
	if err != nil {
		return nil, err
	}
	if sign < 0 && y < 0 {
		return nil, fmt.Errorf("negative BC year %q", s)
	}
	y *= sign
	return &y, nil
}
