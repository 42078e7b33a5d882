package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/lifelines/internal/adapters/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func year(y int) *int { return &y }

func TestValidate(t *testing.T) {
	Convey("Given raw rows with assorted defects", t, func() {
		rows := []dataset.RawRecord{
			{ID: "ok", Name: "Ada Lovelace", BirthYear: year(1815), DeathYear: year(1852), Prominence: year(70)},
			{ID: "nobirth", Name: "Nobody", Prominence: year(50)},
			{ID: "noname", Name: "  ", BirthYear: year(1900), Prominence: year(50)},
			{ID: "loud", Name: "Too Loud", BirthYear: year(1900), Prominence: year(101)},
			{ID: "quiet", Name: "Too Quiet", BirthYear: year(1900), Prominence: year(-1)},
			{ID: "backwards", Name: "Backwards", BirthYear: year(1900), DeathYear: year(1850), Prominence: year(40)},
			{ID: "ok", Name: "Ada Again", BirthYear: year(1815), Prominence: year(10)},
			{Name: "Plato", BirthYear: year(-428), DeathYear: year(-348), Prominence: year(95)},
			{ID: "unranked", Name: "Unranked", BirthYear: year(1900)},
			{ID: "zero", Name: "Zero", BirthYear: year(1901), Prominence: year(0)},
		}

		records, report := dataset.Validate(rows)

		Convey("Then only the valid rows survive", func() {
			So(len(records), ShouldEqual, 3)
			So(report.Rows, ShouldEqual, len(rows))
			So(report.Accepted, ShouldEqual, 3)
			So(report.RejectedTotal(), ShouldEqual, 7)
		})

		Convey("And rejections are counted by reason", func() {
			So(report.Rejected[dataset.ReasonMissingBirth], ShouldEqual, 1)
			So(report.Rejected[dataset.ReasonMissingName], ShouldEqual, 1)
			So(report.Rejected[dataset.ReasonMissingProminence], ShouldEqual, 1)
			So(report.Rejected[dataset.ReasonProminenceRange], ShouldEqual, 2)
			So(report.Rejected[dataset.ReasonDeathBeforeBirth], ShouldEqual, 1)
			So(report.Rejected[dataset.ReasonDuplicateID], ShouldEqual, 1)
			So(errors.Is(report.Rejections[0], dataset.ErrInvalidRecord), ShouldBeTrue)
			So(report.Rejections[0].Row, ShouldEqual, 2)
		})

		Convey("And the first occurrence of a duplicate ID wins", func() {
			So(records[0].Name, ShouldEqual, "Ada Lovelace")
		})

		Convey("And an explicit zero prominence is kept", func() {
			So(records[2].ID, ShouldEqual, "zero")
			So(records[2].Prominence, ShouldEqual, 0)
		})

		Convey("And a missing ID is derived from name and birth year", func() {
			So(records[1].ID, ShouldEqual, dataset.DeriveID("Plato", -428))
			So(records[1].ID, ShouldEqual, dataset.DeriveID(" plato ", -428))
			So(records[1].ID, ShouldNotEqual, dataset.DeriveID("Plato", -427))
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Given the same dataset in several formats", t, func() {
		Convey("When decoding a JSON list", func() {
			rows, err := dataset.Decode(dataset.FormatJSON, []byte(`[{"id":"a","name":"A","birth_year":1800,"death_year":null,"prominence":5}]`))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(*rows[0].BirthYear, ShouldEqual, 1800)
			So(rows[0].DeathYear, ShouldBeNil)
		})

		Convey("When decoding a wrapped JSON document", func() {
			rows, err := dataset.Decode(dataset.FormatJSON, []byte(`{"records":[{"name":"A","birth_year":1},{"name":"B"}]}`))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[1].BirthYear, ShouldBeNil)
		})

		Convey("When decoding YAML", func() {
			rows, err := dataset.Decode(dataset.FormatYAML, []byte(`
records:
  - name: Hypatia
    birth_year: 350
    death_year: 415
    prominence: 60
    tags: [mathematics, philosophy]
`))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(*rows[0].DeathYear, ShouldEqual, 415)
			So(rows[0].Tags, ShouldResemble, []string{"mathematics", "philosophy"})
		})

		Convey("When decoding a YAML list", func() {
			rows, err := dataset.Decode(dataset.FormatYAML, []byte("- name: A\n  birth_year: 10\n"))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
		})

		Convey("When decoding CSV with aliased headers and era suffixes", func() {
			rows, err := dataset.Decode(dataset.FormatCSV, []byte("Name,Born,Died,Score,Tags\nSocrates,470 BC,399 BC,90,philosophy; ethics\nLiving,1990,,3,\n"))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(*rows[0].BirthYear, ShouldEqual, -470)
			So(*rows[0].DeathYear, ShouldEqual, -399)
			So(*rows[0].Prominence, ShouldEqual, 90)
			So(rows[1].Prominence, ShouldNotBeNil)
			So(rows[0].Tags, ShouldResemble, []string{"philosophy", "ethics"})
			So(rows[1].DeathYear, ShouldBeNil)
		})

		Convey("When the CSV lacks a birth column", func() {
			_, err := dataset.Decode(dataset.FormatCSV, []byte("name,died\nA,1900\n"))
			So(errors.Is(err, dataset.ErrDecode), ShouldBeTrue)
		})

		Convey("When a CSV number is malformed", func() {
			_, err := dataset.Decode(dataset.FormatCSV, []byte("name,birth_year\nA,eighteen\n"))
			So(errors.Is(err, dataset.ErrDecode), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 2")
		})

		Convey("When the JSON is broken", func() {
			_, err := dataset.Decode(dataset.FormatJSON, []byte(`[{"name":`))
			So(errors.Is(err, dataset.ErrDecode), ShouldBeTrue)
		})
	})
}

func TestParseYear(t *testing.T) {
	Convey("Given year strings", t, func() {
		y, err := dataset.ParseYear("428 BCE")
		So(err, ShouldBeNil)
		So(*y, ShouldEqual, -428)

		y, err = dataset.ParseYear("33 ad")
		So(err, ShouldBeNil)
		So(*y, ShouldEqual, 33)

		y, err = dataset.ParseYear("")
		So(err, ShouldBeNil)
		So(y, ShouldBeNil)

		_, err = dataset.ParseYear("-5 BC")
		So(err, ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given dataset files on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When loading a JSON file", func() {
			path := filepath.Join(dir, "people.json")
			So(os.WriteFile(path, []byte(`[{"id":"a","name":"A","birth_year":1800,"prominence":5},{"name":"bad"}]`), 0o600), ShouldBeNil)

			ds, err := dataset.Load(ctx, path)
			So(err, ShouldBeNil)
			So(len(ds.Records), ShouldEqual, 1)
			So(ds.Report.Format, ShouldEqual, dataset.FormatJSON)
			So(ds.Report.Source, ShouldEqual, path)
			So(ds.Report.Rejected[dataset.ReasonMissingBirth], ShouldEqual, 1)
		})

		Convey("When loading a SQLite database", func() {
			path := filepath.Join(dir, "people.db")
			rows := []dataset.RawRecord{
				{ID: "newton", Name: "Isaac Newton", BirthYear: year(1643), DeathYear: year(1727), Prominence: year(98), Tags: []string{"physics", "math"}},
				{Name: "Still Here", BirthYear: year(1970), Prominence: year(20)},
				{Name: "No Birth", Prominence: year(20)},
				{Name: "No Rank", BirthYear: year(1950)},
			}
			So(dataset.WriteSQLite(ctx, path, rows), ShouldBeNil)

			ds, err := dataset.Load(ctx, path)
			So(err, ShouldBeNil)
			So(ds.Report.Format, ShouldEqual, dataset.FormatSQLite)
			So(len(ds.Records), ShouldEqual, 2)
			So(ds.Records[0].ID, ShouldEqual, "newton")
			So(*ds.Records[0].DeathYear, ShouldEqual, 1727)
			So(ds.Records[0].Tags, ShouldResemble, []string{"physics", "math"})
			So(ds.Records[1].Ongoing(), ShouldBeTrue)
			So(ds.Records[1].ID, ShouldEqual, dataset.DeriveID("Still Here", 1970))
			So(ds.Report.Rejected[dataset.ReasonMissingProminence], ShouldEqual, 1)
		})

		Convey("When the extension is unknown", func() {
			_, err := dataset.Load(ctx, filepath.Join(dir, "people.xml"))
			So(errors.Is(err, dataset.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("When the file is missing", func() {
			_, err := dataset.Load(ctx, filepath.Join(dir, "missing.json"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSynthesize(t *testing.T) {
	Convey("Given a seed", t, func() {
		a := dataset.Synthesize(500, 9)
		b := dataset.Synthesize(500, 9)

		Convey("Then generation is deterministic and fully valid", func() {
			So(len(a), ShouldEqual, 500)
			So(a, ShouldResemble, b)
			for _, r := range a {
				So(r.Prominence, ShouldBeBetweenOrEqual, 0, 100)
				if r.DeathYear != nil {
					So(*r.DeathYear, ShouldBeGreaterThanOrEqualTo, r.BirthYear)
				}
			}
		})

		Convey("And another seed gives another dataset", func() {
			So(dataset.Synthesize(50, 10), ShouldNotResemble, dataset.Synthesize(50, 9))
		})
	})
}

func TestWatcher(t *testing.T) {
	Convey("Given a watched dataset file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "people.json")
		So(os.WriteFile(path, []byte(`[]`), 0o600), ShouldBeNil)

		w, err := dataset.NewWatcher(path, dataset.WithDebounce(20*time.Millisecond))
		So(err, ShouldBeNil)
		defer w.Close()

		// Give fsnotify time to start watching.
		time.Sleep(50 * time.Millisecond)

		Convey("When the file is rewritten", func() {
			So(os.WriteFile(path, []byte(`[{"name":"A","birth_year":1}]`), 0o600), ShouldBeNil)

			Convey("Then a change is signalled", func() {
				select {
				case <-w.Changes():
				case <-time.After(2 * time.Second):
					So("no change signal", ShouldBeEmpty)
				}
			})
		})

		Convey("When an unrelated file changes", func() {
			So(os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600), ShouldBeNil)

			Convey("Then nothing is signalled", func() {
				select {
				case <-w.Changes():
					So("unexpected change signal", ShouldBeEmpty)
				case <-time.After(150 * time.Millisecond):
				}
			})
		})
	})

	Convey("Given a path in a missing directory", t, func() {
		_, err := dataset.NewWatcher("/nonexistent/dir/people.json")
		So(err, ShouldNotBeNil)
	})
}
