package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf)
		Reset(func() {
			SetOutput(os.Stderr)
			SetLevel(LevelInfo)
		})

		Convey("Info lines carry level, message and key/value pairs", func() {
			SetLevel(LevelInfo)
			Info("schedule built", "day", 1, "venue", "Seminar Hall")

			So(buf.String(), ShouldContainSubstring, "[INFO] schedule built")
			So(buf.String(), ShouldContainSubstring, "day=1")
			So(buf.String(), ShouldContainSubstring, `venue="Seminar Hall"`)
		})

		Convey("Debug is suppressed at info level", func() {
			SetLevel(LevelInfo)
			Debug("hidden")
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Error prepends the err key", func() {
			SetLevel(LevelError)
			Warn("hidden")
			Error("reload failed", errors.New("boom"), "path", "/tmp/x")

			So(buf.String(), ShouldNotContainSubstring, "hidden")
			So(buf.String(), ShouldContainSubstring, "[ERROR] reload failed err=boom path=/tmp/x")
		})

		Convey("An odd trailing key is ignored", func() {
			Info("odd", "k", "v", "dangling")
			So(buf.String(), ShouldContainSubstring, "odd k=v\n")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("SetLevelString accepts known names only", t, func() {
		Reset(func() { SetLevel(LevelInfo) })

		So(SetLevelString("DEBUG"), ShouldBeNil)
		So(SetLevelString("warning"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}
