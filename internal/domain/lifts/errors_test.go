package lifts_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/liftsheet/internal/domain/lifts"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorKind(t *testing.T) {
	Convey("ErrorKind classifies transform errors", t, func() {
		missing := &lifts.MissingColumnError{Column: "Event"}
		cellErr := &lifts.CellError{Column: "TotalKg", Row: 2, Value: "DNS"}

		So(lifts.ErrorKind(nil), ShouldEqual, "")
		So(lifts.ErrorKind(missing), ShouldEqual, lifts.KindMissingColumn)
		So(lifts.ErrorKind(cellErr), ShouldEqual, lifts.KindNotNumeric)
		So(lifts.ErrorKind(&lifts.StageError{Stage: "round", Err: cellErr}), ShouldEqual, lifts.KindNotNumeric)
		So(lifts.ErrorKind(fmt.Errorf("stages: %w", lifts.ErrUnknownStage)), ShouldEqual, lifts.KindUnknownStage)
		So(lifts.ErrorKind(errors.New("disk full")), ShouldEqual, lifts.KindOther)

		Convey("A missing column outranks a bad cell in joined errors", func() {
			So(lifts.ErrorKind(errors.Join(cellErr, missing)), ShouldEqual, lifts.KindMissingColumn)
		})
	})
}
