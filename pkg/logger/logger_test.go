package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			So(func() { l.Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
		})

		Convey("Named returns a child logger", func() {
			So(Named("test"), ShouldNotBeNil)
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger on a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, FormatJSON), ShouldBeNil)
		So(SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = SetLevelString("info") }()

		Named("summary").Debug(context.Background(), "built",
			Int("period", 5),
			Bool("cached", false),
			Duration("took", 2*time.Millisecond),
			Error(errors.New("boom")),
		)

		Convey("The line carries every field plus source", func() {
			var line map[string]interface{}
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
			So(line["msg"], ShouldEqual, "built")
			So(line["logger"], ShouldEqual, "summary")
			So(line["period"], ShouldEqual, float64(5))
			So(line["cached"], ShouldEqual, false)
			So(line["error"], ShouldEqual, "boom")
			So(line["source"], ShouldContainSubstring, "logger_test.go")
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given an info-level text logger", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, FormatText), ShouldBeNil)
		So(SetLevelString("INFO"), ShouldBeNil)

		Get().Debug(context.Background(), "hidden")
		Get().Warn(context.Background(), "shown")

		So(buf.String(), ShouldNotContainSubstring, "hidden")
		So(strings.Count(buf.String(), "shown"), ShouldEqual, 1)
	})

	Convey("Unknown levels and formats are rejected", t, func() {
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(InitWithWriter(&bytes.Buffer{}, Format("xml")), ShouldNotBeNil)
		So(InitWithWriter(nil, FormatText), ShouldNotBeNil)
	})

	Convey("Nop swallows everything", t, func() {
		l := Nop().Named("x")
		So(func() { l.Info(context.Background(), "nothing") }, ShouldNotPanic)
	})
}
