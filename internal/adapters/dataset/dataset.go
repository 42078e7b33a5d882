// Package dataset ingests lifespan records from JSON, YAML, CSV or SQLite
// files, validates them, and watches the source for changes.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/metrics"
)

// Rejection reasons, also used as metric label values.
const (
	ReasonMissingBirth      = "missing_birth"
	ReasonMissingName       = "missing_name"
	ReasonMissingProminence = "missing_prominence"
	ReasonProminenceRange   = "prominence_out_of_range"
	ReasonDeathBeforeBirth  = "death_before_birth"
	ReasonDuplicateID       = "duplicate_id"
)

// maxRejections bounds the per-row detail kept in a Report.
const maxRejections = 100

// idNamespace scopes derived record IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lifelines.invalid/records"))

// RawRecord is one row as it appears in a dataset file, before validation.
type RawRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	BirthYear   *int     `json:"birth_year" yaml:"birth_year"`
	DeathYear   *int     `json:"death_year" yaml:"death_year"`
	Prominence  *int     `json:"prominence" yaml:"prominence"`
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Rejection describes one dropped row.
type Rejection struct {
	Row    int // 1-based position in the source
	ID     string
	Reason string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("row %d (%q): %s", r.Row, r.ID, r.Reason)
}

// Unwrap lets callers match rejections with errors.Is(err, ErrInvalidRecord).
func (r Rejection) Unwrap() error { return ErrInvalidRecord }

// Report summarises a load.
type Report struct {
	Source     string
	Format     string
	Rows       int
	Accepted   int
	Rejected   map[string]int
	Rejections []Rejection // first maxRejections only
	Duration   time.Duration
}

// RejectedTotal sums rejections over all reasons.
func (r Report) RejectedTotal() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

func (r *Report) reject(row int, id, reason string) {
	if r.Rejected == nil {
		r.Rejected = make(map[string]int)
	}
	r.Rejected[reason]++
	if len(r.Rejections) < maxRejections {
		r.Rejections = append(r.Rejections, Rejection{Row: row, ID: id, Reason: reason})
	}
}

// Dataset is the validated result of a load.
type Dataset struct {
	Records []model.Record
	Report  Report
}

// DeriveID returns the stable ID used for rows without one.
func DeriveID(name string, birthYear int) string {
	key := strings.ToLower(strings.TrimSpace(name)) + "|" + strconv.Itoa(birthYear)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Validate converts raw rows into records. Invalid rows and repeated IDs are
// dropped and counted; the first occurrence of an ID wins.
func Validate(rows []RawRecord) ([]model.Record, Report) {
	report := Report{Rows: len(rows), Rejected: make(map[string]int)}
	out := make([]model.Record, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for i, raw := range rows {
		row := i + 1
		name := strings.TrimSpace(raw.Name)
		id := strings.TrimSpace(raw.ID)

		switch {
		case raw.BirthYear == nil:
			report.reject(row, id, ReasonMissingBirth)
			continue
		case name == "":
			report.reject(row, id, ReasonMissingName)
			continue
		case raw.Prominence == nil:
			report.reject(row, id, ReasonMissingProminence)
			continue
		case *raw.Prominence < 0 || *raw.Prominence > 100:
			report.reject(row, id, ReasonProminenceRange)
			continue
		case raw.DeathYear != nil && *raw.DeathYear < *raw.BirthYear:
			report.reject(row, id, ReasonDeathBeforeBirth)
			continue
		}

		if id == "" {
			id = DeriveID(name, *raw.BirthYear)
		}
		if _, dup := seen[id]; dup {
			report.reject(row, id, ReasonDuplicateID)
			continue
		}
		seen[id] = struct{}{}

		r := model.Record{
			ID:          id,
			Name:        name,
			BirthYear:   *raw.BirthYear,
			Prominence:  *raw.Prominence,
			Color:       strings.TrimSpace(raw.Color),
			Description: raw.Description,
			Tags:        raw.Tags,
		}
		if raw.DeathYear != nil {
			r.DeathYear = model.Year(*raw.DeathYear)
		}
		out = append(out, r)
	}
	report.Accepted = len(out)
	return out, report
}

// Format names accepted by Decode.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// FormatOf picks a format from the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads, decodes and validates the dataset at path.
func Load(ctx context.Context, path string) (*Dataset, error) {
	start := time.Now()
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var rows []RawRecord
	if format == FormatSQLite {
		rows, err = readSQLite(ctx, path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		rows, err = Decode(format, data)
	}
	if err != nil {
		metrics.RecordErrorByComponent("dataset", "decode")
		return nil, err
	}

	records, report := Validate(rows)
	report.Source = path
	report.Format = format
	report.Duration = time.Since(start)

	for reason, n := range report.Rejected {
		metrics.RecordDatasetRejected(reason, n)
	}
	metrics.UpdateDatasetRecords(report.Accepted)
	metrics.RecordDatasetLoadDuration(float64(report.Duration.Milliseconds()))

	return &Dataset{Records: records, Report: report}, nil
}
