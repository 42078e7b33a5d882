package svg

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func wellFormed(doc string) error {
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		if _, err := d.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func TestRender(t *testing.T) {
	Convey("Given a plan with two records", t, func() {
		cfg := layout.DefaultConfig()
		cfg.CurrentYear = 2025
		view := model.Viewport{Width: 1000, Height: 300}
		records := []model.Record{
			{ID: "ada", Name: "Ada <Lovelace> & co", BirthYear: 1815, DeathYear: model.Year(1852), Prominence: 90, Color: "#123456"},
			{ID: "kant", Name: "Kant", BirthYear: 1724, DeathYear: model.Year(1804), Prominence: 92},
		}
		plan := layout.Compute(records, model.ZoomTransform{Scale: 10, TranslateX: -8800}, view, cfg)
		So(plan.Entries, ShouldHaveLength, 2)

		doc := Render(plan, view, cfg, WithTitle("Lifelines"))

		Convey("The document is well-formed XML", func() {
			So(wellFormed(doc), ShouldBeNil)
			So(doc, ShouldStartWith, `<?xml`)
			So(doc, ShouldContainSubstring, `<title>Lifelines</title>`)
		})

		Convey("Each entry gets a rect at its lane", func() {
			So(strings.Count(doc, `<g data-id=`), ShouldEqual, 2)
			So(doc, ShouldContainSubstring, `fill="#123456"`)
			So(doc, ShouldContainSubstring, `y="30"`)
		})

		Convey("Names are escaped", func() {
			So(doc, ShouldNotContainSubstring, "<Lovelace>")
			So(doc, ShouldContainSubstring, "&lt;Lovelace&gt; &amp; co")
		})

		Convey("The axis is drawn unless disabled", func() {
			So(doc, ShouldContainSubstring, `class="tick"`)
			So(Render(plan, view, cfg, WithTicks(0)), ShouldNotContainSubstring, `class="tick"`)
		})
	})

	Convey("An empty plan still renders a valid document", t, func() {
		doc := Render(layout.Plan{}, model.Viewport{}, layout.DefaultConfig())
		So(wellFormed(doc), ShouldBeNil)
		So(doc, ShouldNotContainSubstring, "<g ")
	})
}

func TestHelpers(t *testing.T) {
	Convey("num trims trailing zeros", t, func() {
		So(num(100), ShouldEqual, "100")
		So(num(12.5), ShouldEqual, "12.5")
		So(num(-0.001), ShouldEqual, "0")
		So(num(1.239), ShouldEqual, "1.24")
	})

	Convey("escapeXML escapes every special character", t, func() {
		So(escapeXML(`<a href="x">'&'</a>`), ShouldEqual, "&lt;a href=&quot;x&quot;&gt;&apos;&amp;&apos;&lt;/a&gt;")
	})
}
