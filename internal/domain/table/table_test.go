package table_test

import (
	"errors"
	"testing"

	"github.com/okian/liftsheet/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() *table.Table {
	t, err := table.New(
		[]string{"Name", "Event", "Squat1Kg"},
		[][]string{
			{"Alice", "SBD", "100"},
			{"Bob", "B", ""},
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNew(t *testing.T) {
	Convey("Given column and row slices", t, func() {
		Convey("When every row is aligned", func() {
			tbl, err := table.New([]string{"A", "B"}, [][]string{{"1", "2"}})

			Convey("Then the table is built", func() {
				So(err, ShouldBeNil)
				So(tbl.Len(), ShouldEqual, 1)
			})
		})

		Convey("When a row is short", func() {
			tbl, err := table.New([]string{"A", "B"}, [][]string{{"1", "2"}, {"3"}})

			Convey("Then it reports the ragged row", func() {
				So(tbl, ShouldBeNil)
				So(errors.Is(err, table.ErrRaggedRow), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "row 2")
			})
		})

		Convey("When a column name repeats", func() {
			_, err := table.New([]string{"A", "A"}, nil)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, table.ErrDuplicateColumn), ShouldBeTrue)
			})
		})
	})
}

func TestIndex(t *testing.T) {
	Convey("Given a sample table", t, func() {
		tbl := sample()

		So(tbl.Index("Name"), ShouldEqual, 0)
		So(tbl.Index("Squat1Kg"), ShouldEqual, 2)
		So(tbl.Index("squat1kg"), ShouldEqual, table.NotFound)
		So(tbl.Index("Missing"), ShouldEqual, table.NotFound)
		So(tbl.Has("Event"), ShouldBeTrue)
	})
}

func TestAppend(t *testing.T) {
	Convey("Given a sample table", t, func() {
		tbl := sample()

		Convey("When several columns are appended", func() {
			tbl.AppendColumns("Team", "Place")

			Convey("Then they keep their order", func() {
				So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Squat1Kg", "Team", "Place"})
				So(tbl.Rows[1], ShouldResemble, []string{"Bob", "B", "", "", ""})
			})
		})

		Convey("When a column is appended", func() {
			tbl.AppendColumn("Best3SquatKg")

			Convey("Then every row gains an empty trailing cell", func() {
				So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Squat1Kg", "Best3SquatKg"})
				for _, row := range tbl.Rows {
					So(len(row), ShouldEqual, 4)
					So(row[3], ShouldEqual, "")
				}
			})
		})
	})
}

func TestRemove(t *testing.T) {
	Convey("Given a sample table", t, func() {
		tbl := sample()

		Convey("When removing a named column", func() {
			So(tbl.RemoveColumn("Event"), ShouldBeTrue)
			So(tbl.RemoveColumn("Event"), ShouldBeFalse)
			So(tbl.Rows[1], ShouldResemble, []string{"Bob", ""})
		})

		Convey("When removing empty columns", func() {
			tbl.AppendColumns("Team", "Place")
			tbl.Rows[0][4] = "1"
			dropped := tbl.RemoveEmptyColumns()

			Convey("Then only all-empty columns go, in column order", func() {
				So(dropped, ShouldResemble, []string{"Team"})
				So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Squat1Kg", "Place"})
			})
		})
	})
}

func TestCat(t *testing.T) {
	Convey("Given two tables with overlapping columns", t, func() {
		tbl := sample()
		other, err := table.New([]string{"Event", "Name", "TotalKg"}, [][]string{{"B", "Carol", "90"}})
		So(err, ShouldBeNil)

		tbl.Cat(other)

		Convey("Then missing columns are added and cells map by name", func() {
			So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Squat1Kg", "TotalKg"})
			So(tbl.Rows[0], ShouldResemble, []string{"Alice", "SBD", "100", ""})
			So(tbl.Rows[2], ShouldResemble, []string{"Carol", "B", "", "90"})
		})
	})
}

func TestShallowClone(t *testing.T) {
	Convey("Given a clone of a sample table", t, func() {
		tbl := sample()
		clone := tbl.ShallowClone()

		Convey("When the clone is mutated", func() {
			clone.AppendColumn("Best3SquatKg")
			clone.Rows[0][2] = "200"
			clone.Rows[0][3] = "200"

			Convey("Then the source is unchanged", func() {
				So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Squat1Kg"})
				So(tbl.Rows[0], ShouldResemble, []string{"Alice", "SBD", "100"})
				So(len(tbl.Rows[1]), ShouldEqual, 3)
			})
		})
	})
}

func TestEscape(t *testing.T) {
	Convey("Escape quotes only when required", t, func() {
		So(table.Escape("100.5"), ShouldEqual, "100.5")
		So(table.Escape(""), ShouldEqual, "")
		So(table.Escape("Smith, John"), ShouldEqual, `"Smith, John"`)
		So(table.Escape(`The "Tank"`), ShouldEqual, `"The ""Tank"""`)
		So(table.Escape("a\nb"), ShouldEqual, "\"a\nb\"")
	})
}
