package lifts_test

import (
	"errors"
	"testing"

	"github.com/okian/liftsheet/internal/domain/lifts"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRoundKg(t *testing.T) {
	Convey("Given weight columns with assorted values", t, func() {
		src := mustTable(
			[]string{"Name", "Event", "Squat1Kg", "Best3SquatKg", "Bench4Kg", "Best3DeadliftKg", "TotalKg", "BodyweightKg"},
			[]string{"A", "B", "101.3", "", "-101.25", "250.25", "100.24", "82.37"},
			[]string{"B", "SBD", "1 000.2", "200", "0", "-0.1", "", ""},
		)

		out, err := lifts.RoundKg(src)
		So(err, ShouldBeNil)

		Convey("Then values land on the nearest half kilo", func() {
			So(cell(out, 0, "Squat1Kg"), ShouldEqual, "101.5")
			So(cell(out, 0, "TotalKg"), ShouldEqual, "100")
			So(cell(out, 0, "Best3DeadliftKg"), ShouldEqual, "250.5")
			So(cell(out, 1, "Squat1Kg"), ShouldEqual, "1000")
			So(cell(out, 1, "Best3SquatKg"), ShouldEqual, "200")
		})

		Convey("Then exact halves round up", func() {
			So(cell(out, 0, "Bench4Kg"), ShouldEqual, "-101")
		})

		Convey("Then empty cells and negative zero become 0", func() {
			So(cell(out, 0, "Best3SquatKg"), ShouldEqual, "0")
			So(cell(out, 1, "TotalKg"), ShouldEqual, "0")
			So(cell(out, 1, "Best3DeadliftKg"), ShouldEqual, "0")
		})

		Convey("Then columns outside the weight set are untouched", func() {
			So(cell(out, 0, "BodyweightKg"), ShouldEqual, "82.37")
			So(cell(out, 1, "Event"), ShouldEqual, "SBD")
		})

		Convey("Then the source table is untouched", func() {
			So(cell(src, 0, "Squat1Kg"), ShouldEqual, "101.3")
			So(cell(src, 0, "Best3SquatKg"), ShouldEqual, "")
		})

		Convey("Then rounding again changes nothing", func() {
			again, err := lifts.RoundKg(out)
			So(err, ShouldBeNil)
			So(again.Rows, ShouldResemble, out.Rows)
		})
	})

	Convey("Given a weight column in the first position", t, func() {
		src := mustTable([]string{"TotalKg", "Squat1Kg"}, []string{"101.3", "101.3"})

		out, err := lifts.RoundKg(src)

		Convey("Then it is treated as absent and left as-is", func() {
			So(err, ShouldBeNil)
			So(out.Rows[0], ShouldResemble, []string{"101.3", "101.5"})
		})
	})

	Convey("Given a non-numeric cell in Squat2Kg on row 3", t, func() {
		src := mustTable(
			[]string{"Name", "Squat1Kg", "Squat2Kg"},
			[]string{"A", "100", "110"},
			[]string{"B", "100", "110"},
			[]string{"C", "100", "DNS"},
		)

		out, err := lifts.RoundKg(src)

		Convey("Then it fails with column, row and text, and no table", func() {
			So(out, ShouldBeNil)
			So(err.Error(), ShouldEqual, "error in 'Squat2Kg' row 3: 'DNS' not a number")
			var ce *lifts.CellError
			So(errors.As(err, &ce), ShouldBeTrue)
			So(ce.Column, ShouldEqual, "Squat2Kg")
			So(ce.Row, ShouldEqual, 3)
			So(ce.Value, ShouldEqual, "DNS")
			So(errors.Is(err, lifts.ErrNotNumeric), ShouldBeTrue)
		})
	})

	Convey("Given bad cells on several rows", t, func() {
		src := mustTable(
			[]string{"Name", "Squat1Kg", "Bench1Kg"},
			[]string{"A", "100", "x"},
			[]string{"B", "y", "60"},
		)

		_, err := lifts.RoundKg(src)

		Convey("Then the first bad cell in row order wins", func() {
			So(err.Error(), ShouldEqual, "error in 'Bench1Kg' row 1: 'x' not a number")
		})
	})
}
