package availability_test

import (
	"testing"
	"time"

	availability "github.com/emberview/crest/internal/domain/availability"
	. "github.com/smartystreets/goconvey/convey"
)

func utc(year int, month time.Month, day, hour, minute, sec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func TestParseWindow(t *testing.T) {
	now := utc(2025, time.June, 15, 12, 0, 0)

	Convey("Given descriptor text in each grammar family", t, func() {
		Convey("When it carries an explicit event start and end ISO pair", func() {
			w := availability.ParseWindow(now, "Event start: 2025-12-04T15:00:00Z Event end: 2025-12-06T20:00:00Z")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.December, 4, 15, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.December, 6, 20, 0, 0))
		})

		Convey("When the event end is absent, the end defaults to 23:59:59 of the start's day", func() {
			w := availability.ParseWindow(now, "Event start: 2025-12-04T15:00:00Z")
			So(w, ShouldNotBeNil)
			So(w.End, ShouldResemble, utc(2025, time.December, 4, 23, 59, 59))
		})

		Convey("When it is a bare ISO range, it round-trips exactly", func() {
			w := availability.ParseWindow(now, "2025-12-04T15:00:00Z – 2025-12-04T23:59:00Z")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.December, 4, 15, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.December, 4, 23, 59, 0))
		})

		Convey("When it is an explicit duration phrase with abbreviated months", func() {
			w := availability.ParseWindow(now, "Event duration: Jul 04 – Jul 18")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.July, 4, 0, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.July, 18, 23, 59, 59))
		})

		Convey("When the duration phrase uses the same-month variant", func() {
			w := availability.ParseWindow(now, "Event duration: Jul 4-18")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.July, 4, 0, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.July, 18, 23, 59, 59))
		})

		Convey("When it is a full natural-language range", func() {
			w := availability.ParseWindow(now, "December 4, 2025 at 3:00 PM – December 5, 2025 at 1:30 AM")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.December, 4, 15, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.December, 5, 1, 30, 0))
		})

		Convey("When it is a natural-language start with a trailing duration", func() {
			w := availability.ParseWindow(now, "December 4, 2025 at 3:00 PM for 90 minutes")
			So(w, ShouldNotBeNil)
			So(w.End, ShouldResemble, utc(2025, time.December, 4, 16, 30, 0))

			Convey("And hours are honored too", func() {
				w = availability.ParseWindow(now, "December 4, 2025 at 3:00 PM, lasts 2 hours")
				So(w, ShouldNotBeNil)
				So(w.End, ShouldResemble, utc(2025, time.December, 4, 17, 0, 0))
			})
		})

		Convey("When a natural-language start has no duration, the end is the end of that day", func() {
			w := availability.ParseWindow(now, "December 4, 2025 at 3:00 PM")
			So(w, ShouldNotBeNil)
			So(w.End, ShouldResemble, utc(2025, time.December, 4, 23, 59, 59))
		})

		Convey("When it is an abbreviated range without the duration prefix, the current year is assumed", func() {
			w := availability.ParseWindow(now, "Aug 01 – Aug 15")
			So(w, ShouldNotBeNil)
			So(w.Start.Year(), ShouldEqual, 2025)
			So(w.Start.Month(), ShouldEqual, time.August)
		})

		Convey("When it is a bare single day", func() {
			w := availability.ParseWindow(now, "Sep 12")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.September, 12, 0, 0, 0))
			So(w.End, ShouldResemble, utc(2025, time.September, 12, 23, 59, 59))
		})

		Convey("When only the generic fallback applies", func() {
			w := availability.ParseWindow(now, "2025-09-12")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.September, 12, 0, 0, 0))
		})
	})

	Convey("Given text matching more than one grammar family", t, func() {
		Convey("Then the highest-priority family wins outright", func() {
			// Carries both an ISO range and a natural-language phrase;
			// the ISO range is higher priority.
			w := availability.ParseWindow(now, "2025-12-04T15:00:00Z – 2025-12-04T23:59:00Z (December 9, 2025 at 1:00 PM)")
			So(w, ShouldNotBeNil)
			So(w.Start, ShouldResemble, utc(2025, time.December, 4, 15, 0, 0))
		})
	})

	Convey("Given arbitrary malformed input", t, func() {
		cases := []string{
			"",
			"   ",
			"no dates here at all",
			"Event duration: soon",
			"Month 99, 20AB at 77:99 XM",
			"– – – –",
			"Dec 99 – Jan 99",
		}
		Convey("Then parsing is total and yields no window", func() {
			for _, c := range cases {
				So(availability.ParseWindow(now, c), ShouldBeNil)
			}
		})
	})

	Convey("Given any parsed window", t, func() {
		Convey("Then start never exceeds end, even for a reversed range", func() {
			w := availability.ParseWindow(now, "2025-12-04T23:59:00Z – 2025-12-04T15:00:00Z")
			So(w, ShouldNotBeNil)
			So(w.Start.After(w.End), ShouldBeFalse)
		})
	})
}

func TestYearBoundaryRange(t *testing.T) {
	Convey("Given the descriptor 'Event duration: Dec 19 – Jan 01'", t, func() {
		descriptor := "Event duration: Dec 19 – Jan 01"

		Convey("When evaluated in late December of the same year", func() {
			now := utc(2025, time.December, 27, 10, 0, 0)
			w := availability.ParseWindow(now, descriptor)
			So(w, ShouldNotBeNil)
			So(availability.Classify(w, now), ShouldEqual, availability.StatusAvailable)
		})

		Convey("When evaluated in mid January of the following year", func() {
			now := utc(2026, time.January, 15, 10, 0, 0)
			w := availability.ParseWindow(now, descriptor)
			So(w, ShouldNotBeNil)
			So(availability.Classify(w, now), ShouldEqual, availability.StatusExpired)
		})
	})
}

func TestClassify(t *testing.T) {
	start := utc(2025, time.December, 4, 15, 0, 0)
	end := utc(2025, time.December, 6, 20, 0, 0)
	w := &availability.Window{Start: start, End: end}

	Convey("Given a window and a reference instant", t, func() {
		Convey("Then the three-way partition holds", func() {
			So(availability.Classify(w, start.Add(-time.Second)), ShouldEqual, availability.StatusComingSoon)
			So(availability.Classify(w, start.Add(time.Hour)), ShouldEqual, availability.StatusAvailable)
			So(availability.Classify(w, end.Add(time.Second)), ShouldEqual, availability.StatusExpired)
		})

		Convey("And both boundary instants classify as available", func() {
			So(availability.Classify(w, start), ShouldEqual, availability.StatusAvailable)
			So(availability.Classify(w, end), ShouldEqual, availability.StatusAvailable)
		})

		Convey("And a nil window is always unknown", func() {
			So(availability.Classify(nil, start), ShouldEqual, availability.StatusUnknown)
		})
	})
}

func TestParseAddedDate(t *testing.T) {
	now := utc(2025, time.June, 15, 0, 0, 0)

	Convey("Given addition-date text", t, func() {
		Convey("When it is day-first 'DD Month YYYY'", func() {
			d := availability.ParseAddedDate(now, "Added on 04 December 2025.")
			So(d, ShouldNotBeNil)
			So(*d, ShouldResemble, utc(2025, time.December, 4, 0, 0, 0))
		})

		Convey("When it is month/year only, the day defaults to 1", func() {
			d := availability.ParseAddedDate(now, "December 2025")
			So(d, ShouldNotBeNil)
			So(*d, ShouldResemble, utc(2025, time.December, 1, 0, 0, 0))
		})

		Convey("When only a generic layout matches", func() {
			d := availability.ParseAddedDate(now, "2025-12-04")
			So(d, ShouldNotBeNil)
			So(d.Day(), ShouldEqual, 4)
		})

		Convey("When nothing matches, the result is nil", func() {
			So(availability.ParseAddedDate(now, "never"), ShouldBeNil)
			So(availability.ParseAddedDate(now, ""), ShouldBeNil)
		})
	})
}
