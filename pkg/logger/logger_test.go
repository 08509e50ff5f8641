package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	logger "github.com/emberview/crest/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestLogger(t *testing.T) {
	Convey("Given the initialized global logger", t, func() {
		log := logger.Get()

		Convey("Then logging at every level does not panic", func() {
			ctx := context.Background()
			So(func() {
				log.Debug(ctx, "debug message", logger.String("k", "v"))
				log.Info(ctx, "info message", logger.Int("n", 1))
				log.Warn(ctx, "warn message", logger.Float64("f", 1.5))
				log.Error(ctx, "error message", logger.Error(errors.New("boom")))
			}, ShouldNotPanic)
		})

		Convey("And Named returns a scoped logger", func() {
			So(logger.Named("enrich"), ShouldNotBeNil)
		})

		Convey("And Init is idempotent", func() {
			So(logger.Init(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		Convey("Then known levels parse case-insensitively", func() {
			for _, lvl := range []string{"debug", "info", "WARN", "warning", "Error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("And unknown levels error", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then they carry key and value through", func() {
			f := logger.Duration("ttl", time.Minute)
			So(f.Key, ShouldEqual, "ttl")
			So(f.Value, ShouldEqual, time.Minute)

			b := logger.Bool("forced", true)
			So(b.Key, ShouldEqual, "forced")
			So(b.Value, ShouldBeTrue)

			a := logger.Any("meta", map[string]int{"a": 1})
			So(a.Key, ShouldEqual, "meta")
		})
	})
}
