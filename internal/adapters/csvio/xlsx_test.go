package csvio_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/liftsheet/internal/adapters/csvio"
	"github.com/okian/liftsheet/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(path string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func TestReadXLSX(t *testing.T) {
	Convey("Given a workbook with a blank lead row", t, func() {
		path := filepath.Join(t.TempDir(), "results.xlsx")
		err := writeWorkbook(path, [][]any{
			{},
			{"Name", " Event ", "Bench1Kg", "Bench2Kg", "Bench3Kg"},
			{"Anna", "B", "60", "62.5", "-65"},
			{"Bela", "B", "80"},
		})
		So(err, ShouldBeNil)

		Convey("When read through ReadFile", func() {
			tbl, err := csvio.ReadFile(path)

			Convey("Then the first populated row is the header and rows are padded", func() {
				So(err, ShouldBeNil)
				So(tbl.Columns, ShouldResemble, []string{"Name", "Event", "Bench1Kg", "Bench2Kg", "Bench3Kg"})
				So(tbl.Rows, ShouldResemble, [][]string{
					{"Anna", "B", "60", "62.5", "-65"},
					{"Bela", "B", "80", "", ""},
				})
			})
		})

		Convey("When a missing sheet is named", func() {
			_, err := csvio.ReadXLSX(path, "Nope")
			So(errors.Is(err, csvio.ErrNoSheet), ShouldBeTrue)
		})
	})

	Convey("Given a workbook with a row wider than its header", t, func() {
		path := filepath.Join(t.TempDir(), "wide.xlsx")
		err := writeWorkbook(path, [][]any{
			{"Event", "Squat1Kg"},
			{"S", "100", "stray-data"},
		})
		So(err, ShouldBeNil)

		Convey("When it is read", func() {
			tbl, err := csvio.ReadXLSX(path, "")

			Convey("Then the row is rejected as ragged instead of truncated", func() {
				So(tbl, ShouldBeNil)
				So(errors.Is(err, table.ErrRaggedRow), ShouldBeTrue)
			})
		})
	})

	Convey("Given a workbook with blank cells past the header", t, func() {
		path := filepath.Join(t.TempDir(), "trailing.xlsx")
		err := writeWorkbook(path, [][]any{
			{"Event", "Squat1Kg"},
			{"S", "100", "  ", ""},
		})
		So(err, ShouldBeNil)

		Convey("When it is read", func() {
			tbl, err := csvio.ReadXLSX(path, "")

			Convey("Then the blank cells are dropped", func() {
				So(err, ShouldBeNil)
				So(tbl.Rows, ShouldResemble, [][]string{{"S", "100"}})
			})
		})
	})
}
