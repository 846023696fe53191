package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default initialization", t, func() {
		So(Init(), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
	})

	Convey("Given an unknown format", t, func() {
		err := InitWith(Options{Format: "xml"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "xml")
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWith(Options{Format: "json", Writer: &buf}), ShouldBeNil)

		Convey("When a named logger writes fields", func() {
			Named("batch").With(String("job", "42")).Info(context.Background(), "table transformed",
				Int("rows", 3), Error(errors.New("boom")))

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then all fields are present", func() {
				So(line["msg"], ShouldEqual, "table transformed")
				So(line["component"], ShouldEqual, "batch")
				So(line["job"], ShouldEqual, "42")
				So(line["rows"], ShouldEqual, float64(3))
				So(line["error"], ShouldEqual, "boom")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(InitWith(Options{Writer: &buf}), ShouldBeNil)

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			Convey("Then info lines are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(strings.Count(buf.String(), "shown"), ShouldEqual, 1)
			})
		})

		Convey("When the level is unknown", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
