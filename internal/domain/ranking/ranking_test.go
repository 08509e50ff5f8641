package ranking_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/emberview/crest/internal/domain/model"
	ranking "github.com/emberview/crest/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func badge(setID, versionID string, meta *model.BadgeMetadata) model.EnrichedBadge {
	return model.EnrichedBadge{
		SetID:    setID,
		Version:  model.BadgeVersion{ID: versionID, Title: setID + " " + versionID},
		Metadata: meta,
	}
}

func intPtr(v int) *int { return &v }

func keys(badges []model.EnrichedBadge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.Key()
	}
	return out
}

func TestSortPolicies(t *testing.T) {
	Convey("Given a small enriched catalog", t, func() {
		badges := []model.EnrichedBadge{
			badge("spring-fling", "1", &model.BadgeMetadata{
				DateAdded:    "01 March 2025",
				UsageStats:   "12,500 people have this badge",
				Availability: "Event duration: Mar 01 – Mar 15",
			}),
			badge("summer-games", "1", &model.BadgeMetadata{
				DateAdded:    "01 June 2025",
				UsageStats:   "300 people have this badge",
				Availability: "Event duration: Jun 10 – Jun 20",
			}),
			badge("winterfest", "2", &model.BadgeMetadata{
				DateAdded:    "01 December 2024",
				UsageStats:   "980,000 people have this badge",
				Availability: "Event duration: Jul 01 – Jul 10",
			}),
			badge("mystery", "1", nil),
		}

		Convey("When sorting newest_added without position coverage", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyNewestAdded))

			Convey("Then badges order by parsed date descending with pending metadata last", func() {
				So(got, ShouldResemble, []string{
					"summer-games/1", "spring-fling/1", "winterfest/2", "mystery/1",
				})
			})
		})

		Convey("When sorting oldest_added", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyOldestAdded))

			Convey("Then the order reverses, with undated badges first", func() {
				So(got, ShouldResemble, []string{
					"mystery/1", "winterfest/2", "spring-fling/1", "summer-games/1",
				})
			})
		})

		Convey("When sorting most_used", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyMostUsed))
			So(got[0], ShouldEqual, "winterfest/2")
			So(got[1], ShouldEqual, "spring-fling/1")
		})

		Convey("When sorting least_used", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyLeastUsed))

			Convey("Then unparseable usage counts contribute zero and sort first", func() {
				So(got[0], ShouldEqual, "mystery/1")
				So(got[1], ShouldEqual, "summer-games/1")
			})
		})

		Convey("When sorting available_first", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyAvailableFirst))

			Convey("Then the currently available badge leads", func() {
				So(got[0], ShouldEqual, "summer-games/1")
			})
		})

		Convey("When sorting coming_soon_first", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyComingSoonFirst))

			Convey("Then the July event leads", func() {
				So(got[0], ShouldEqual, "winterfest/2")
			})
		})

		Convey("When the input slice order is shuffled", func() {
			shuffled := make([]model.EnrichedBadge, len(badges))
			copy(shuffled, badges)
			rng := rand.New(rand.NewSource(7))

			Convey("Then every policy is deterministic across repeated sorts", func() {
				policies := []ranking.Policy{
					ranking.PolicyNewestAdded, ranking.PolicyOldestAdded,
					ranking.PolicyMostUsed, ranking.PolicyLeastUsed,
					ranking.PolicyAvailableFirst, ranking.PolicyComingSoonFirst,
				}
				for _, p := range policies {
					want := keys(ranking.Sort(testNow, badges, p))
					for i := 0; i < 5; i++ {
						rng.Shuffle(len(shuffled), func(a, b int) {
							shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
						})
						So(keys(ranking.Sort(testNow, shuffled, p)), ShouldResemble, want)
					}
				}
			})
		})
	})

	Convey("Given badges that tie on every policy key", t, func() {
		badges := []model.EnrichedBadge{
			badge("zeta", "1", &model.BadgeMetadata{DateAdded: "01 June 2025"}),
			badge("alpha", "1", &model.BadgeMetadata{DateAdded: "01 June 2025"}),
			badge("alpha", "2", &model.BadgeMetadata{DateAdded: "01 June 2025"}),
		}

		Convey("Then the composite key string breaks the tie", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyNewestAdded))
			So(got, ShouldResemble, []string{"alpha/1", "alpha/2", "zeta/1"})
		})
	})
}

func TestPositionFastPath(t *testing.T) {
	mkSet := func(hinted int) []model.EnrichedBadge {
		badges := make([]model.EnrichedBadge, 10)
		for i := range badges {
			meta := &model.BadgeMetadata{
				// Dates ascend with the index so the date fallback orders
				// opposite to the position hints.
				DateAdded: fmt.Sprintf("%02d January 2025", i+1),
			}
			if i < hinted {
				meta.Position = intPtr(10 - i)
			}
			badges[i] = badge(fmt.Sprintf("set-%02d", i), "1", meta)
		}
		return badges
	}

	Convey("Given a 10-badge set with exactly 90% position coverage", t, func() {
		badges := mkSet(9)

		Convey("When sorting newest_added", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyNewestAdded))

			Convey("Then position ascending wins and the hintless badge falls back after", func() {
				So(got[0], ShouldEqual, "set-08/1") // position 2
				So(got[8], ShouldEqual, "set-00/1") // position 10
				So(got[9], ShouldEqual, "set-09/1") // no hint
			})
		})
	})

	Convey("Given the same set with coverage below the threshold", t, func() {
		badges := mkSet(8)

		Convey("When sorting newest_added", func() {
			got := keys(ranking.Sort(testNow, badges, ranking.PolicyNewestAdded))

			Convey("Then parsed-date descending ordering is used instead", func() {
				So(got[0], ShouldEqual, "set-09/1") // newest date
				So(got[9], ShouldEqual, "set-00/1") // oldest date
			})
		})

		Convey("Then both sides of the boundary still yield a total deterministic order", func() {
			for _, b := range [][]model.EnrichedBadge{mkSet(9), mkSet(8)} {
				first := keys(ranking.Sort(testNow, b, ranking.PolicyNewestAdded))
				second := keys(ranking.Sort(testNow, b, ranking.PolicyNewestAdded))
				So(first, ShouldResemble, second)
			}
		})
	})
}

func TestUsageCount(t *testing.T) {
	Convey("Given usage_stats free text", t, func() {
		cases := map[string]int64{
			"1,234,567 people have this badge": 1234567,
			"300 collected":                    300,
			"  42":                             42,
			"":                                 0,
			"nobody knows":                     0,
			"1,2,3 weird":                      1,
			"about 1,234 others":               0,
		}
		Convey("Then the leading comma-grouped integer is extracted, defaulting to zero", func() {
			for text, want := range cases {
				So(ranking.UsageCount(text), ShouldEqual, want)
			}
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy strings from the API", t, func() {
		Convey("Then known policies parse, empty defaults to newest_added, junk errors", func() {
			p, err := ranking.ParsePolicy("most_used")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ranking.PolicyMostUsed)

			p, err = ranking.ParsePolicy("")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ranking.PolicyNewestAdded)

			_, err = ranking.ParsePolicy("by_vibes")
			So(err, ShouldEqual, ranking.ErrUnknownPolicy)
		})
	})
}
