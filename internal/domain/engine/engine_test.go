package engine_test

import (
	"context"
	"testing"

	engine "github.com/okian/crosswalk/internal/domain/engine"
	filter "github.com/okian/crosswalk/internal/domain/filter"
	"github.com/okian/crosswalk/internal/domain/model"
	"github.com/okian/crosswalk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func rows(field string, descs ...string) []model.Record {
	out := make([]model.Record, len(descs))
	for i, d := range descs {
		out[i] = model.Record{field: d, "id": i}
	}
	return out
}

func spec() engine.Spec {
	return engine.Spec{LeftField: "Description", RightField: "Long Description"}
}

func TestPreprocessing(t *testing.T) {
	Convey("Given an engine and rows with data-quality problems", t, func() {
		e := engine.New()
		left := []model.Record{
			{"Description": "cotton gauze roll"},
			{"Description": ""},                  // empty description
			{"Other": "wrong field"},             // missing description
			{"Description": "!!! ---"},           // normalizes to empty
			{"Description": "ab", "id": "short"}, // no significant tokens
			{"Description": 404},                 // numeric description
		}
		right := rows("Long Description", "cotton gauze roll, 4in")

		Convey("When building the sweep state", func() {
			st := e.NewState(context.Background(), left, right, spec())

			Convey("Then bad rows are silently excluded", func() {
				So(len(st.Left), ShouldEqual, 2) // the gauze row and the numeric 404
				So(st.Stats.LeftTotal, ShouldEqual, 6)
				So(st.Stats.LeftDropped, ShouldEqual, 4)
				So(st.Stats.RightDropped, ShouldEqual, 0)
			})

			Convey("And surviving entries carry normalized text and tokens", func() {
				So(st.Left[0].Normalized, ShouldEqual, "cotton gauze roll")
				So(st.Left[0].Tokens, ShouldContainKey, "gauze")
				So(st.Left[1].Normalized, ShouldEqual, "404")
			})
		})
	})
}

func TestStep(t *testing.T) {
	Convey("Given a state swept one batch at a time", t, func() {
		e := engine.New(engine.WithBatchSize(2))
		left := rows("Description", "cotton gauze roll", "plastic syringe 10ml", "wound dressing pad", "surgical gloves size m", "alcohol prep swab")
		right := rows("Long Description", "cotton gauze roll, 4in")

		st := e.NewState(context.Background(), left, right, spec())

		Convey("When stepping once", func() {
			e.Step(context.Background(), st)

			Convey("Then the cursor advanced exactly one batch", func() {
				So(st.Cursor, ShouldEqual, 2)
				So(st.Done(), ShouldBeFalse)
				So(st.Progress().Percent, ShouldEqual, 40)
			})
		})

		Convey("When stepping to completion", func() {
			for !st.Done() {
				e.Step(context.Background(), st)
			}

			Convey("Then every left entry was processed", func() {
				So(st.Cursor, ShouldEqual, 5)
				So(st.Progress().Percent, ShouldEqual, 100)
			})

			Convey("And stepping again is a no-op", func() {
				cursor := st.Cursor
				e.Step(context.Background(), st)
				So(st.Cursor, ShouldEqual, cursor)
			})
		})
	})
}

func TestMatchAll(t *testing.T) {
	Convey("Given the direct, unfiltered entry point", t, func() {
		e := engine.New()

		Convey("When matching gauze against gauze and syringe at threshold 50", func() {
			left := rows("Description", "cotton gauze roll")
			right := rows("Long Description", "cotton gauze roll, 4in", "plastic syringe 10ml")
			s := spec()
			s.MinThreshold = 50

			results, stats := e.MatchAll(context.Background(), left, right, s)

			Convey("Then exactly the gauze pair is reported", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].RightText, ShouldEqual, "cotton gauze roll, 4in")
				So(results[0].Score, ShouldBeGreaterThan, 50)
			})

			Convey("And both pairs were scored", func() {
				So(stats.Scored, ShouldEqual, 2)
				So(stats.Collected, ShouldEqual, 1)
			})
		})

		Convey("When matching a string against itself", func() {
			left := rows("Description", "surgical gloves size m")
			right := rows("Long Description", "surgical gloves size m")

			results, _ := e.MatchAll(context.Background(), left, right, spec())

			Convey("Then the score is exactly 100", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Score, ShouldEqual, 100.0)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given the chunked, filtered entry point", t, func() {
		Convey("When a left entry hits a near-perfect match first", func() {
			e := engine.New()
			left := rows("Description", "sterile cotton gauze pad")
			right := rows("Long Description", "sterile cotton gauze pad", "sterile cotton gauze pads")
			s := spec()
			s.MinThreshold = 50

			results, stats := e.Run(context.Background(), left, right, s, nil)

			Convey("Then scanning stops at the near-perfect match", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Score, ShouldEqual, 100.0)
				So(stats.RowBreaks, ShouldEqual, 1)
			})

			Convey("And the second candidate was never scored", func() {
				So(stats.Scored, ShouldEqual, 1)
			})
		})

		Convey("When enough high-confidence matches accumulate", func() {
			e := engine.New()
			descs := make([]string, 10)
			for i := range descs {
				descs[i] = "sterile cotton gauze pad"
			}
			left := rows("Description", descs...)
			right := rows("Long Description", "sterile cotton gauze pad")
			s := spec()
			s.MinThreshold = 70
			s.MaxResults = 1

			results, stats := e.Run(context.Background(), left, right, s, nil)

			Convey("Then the sweep exits before processing every left entry", func() {
				So(stats.EarlyExit, ShouldBeTrue)
				So(stats.Collected, ShouldEqual, 3) // 3 x MaxResults
			})

			Convey("And the output is still ranked and capped", func() {
				So(len(results), ShouldEqual, 1)
			})
		})

		Convey("When the threshold is below the early-exit arm point", func() {
			e := engine.New()
			descs := make([]string, 10)
			for i := range descs {
				descs[i] = "sterile cotton gauze pad"
			}
			left := rows("Description", descs...)
			right := rows("Long Description", "sterile cotton gauze pad")
			s := spec()
			s.MinThreshold = 50
			s.MaxResults = 1

			_, stats := e.Run(context.Background(), left, right, s, nil)

			Convey("Then the sweep runs to completion", func() {
				So(stats.EarlyExit, ShouldBeFalse)
				So(stats.Collected, ShouldEqual, 10)
			})
		})

		Convey("When collecting results at a threshold", func() {
			e := engine.New()
			left := rows("Description", "cotton gauze roll", "plastic syringe 10ml", "wound dressing pad")
			right := rows("Long Description", "cotton gauze roll, 4in", "plastic syringes 10ml box", "adhesive wound dressing pads")
			s := spec()
			s.MinThreshold = 40

			results, _ := e.Run(context.Background(), left, right, s, nil)

			Convey("Then every result meets the threshold", func() {
				So(len(results), ShouldBeGreaterThan, 0)
				for _, r := range results {
					So(r.Score, ShouldBeGreaterThanOrEqualTo, 40)
				}
			})

			Convey("And the output is sorted non-increasing", func() {
				for i := 1; i < len(results); i++ {
					So(results[i].Score, ShouldBeLessThanOrEqualTo, results[i-1].Score)
				}
			})
		})

		Convey("When a run asks for the token diff", func() {
			e := engine.New()
			left := rows("Description", "cotton gauze roll")
			right := rows("Long Description", "cotton gauze roll, 4in")
			s := spec()
			s.MinThreshold = 50
			s.TokenDiff = true

			results, _ := e.Run(context.Background(), left, right, s, nil)

			Convey("Then the breakdown is attached", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Diff, ShouldNotBeNil)
				So(results[0].Diff.Common, ShouldResemble, []string{"cotton", "gauze", "roll"})
				So(results[0].Diff.RightOnly, ShouldResemble, []string{"4in"})
			})
		})

		Convey("When the context is already canceled", func() {
			e := engine.New(engine.WithBatchSize(1))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			left := rows("Description", "cotton gauze roll", "wound dressing pad")
			right := rows("Long Description", "cotton gauze roll, 4in")

			var events []engine.Progress
			results, _ := e.Run(ctx, left, right, spec(), func(p engine.Progress) {
				events = append(events, p)
			})

			Convey("Then the sweep is abandoned without a completion event", func() {
				So(len(results), ShouldEqual, 0)
				So(len(events), ShouldEqual, 0)
			})
		})
	})
}

func TestProgressReporting(t *testing.T) {
	Convey("Given a sweep reporting progress every batch", t, func() {
		e := engine.New(engine.WithBatchSize(1))
		left := rows("Description", "cotton gauze roll", "plastic syringe 10ml", "wound dressing pad", "surgical gloves size m", "alcohol prep swab")
		right := rows("Long Description", "cotton gauze roll, 4in")

		Convey("When collecting callback events", func() {
			var events []engine.Progress
			e.Run(context.Background(), left, right, spec(), func(p engine.Progress) {
				events = append(events, p)
			})

			Convey("Then percentages are monotonically non-decreasing", func() {
				So(len(events), ShouldBeGreaterThan, 1)
				for i := 1; i < len(events); i++ {
					So(events[i].Percent, ShouldBeGreaterThanOrEqualTo, events[i-1].Percent)
				}
			})

			Convey("And only the final event reports 100", func() {
				So(events[len(events)-1].Percent, ShouldEqual, 100)
				for _, p := range events[:len(events)-1] {
					So(p.Percent, ShouldBeLessThan, 100)
				}
			})
		})

		Convey("When streaming events over a channel", func() {
			events := make(chan engine.Progress, 16)
			e.Run(context.Background(), left, right, spec(), engine.Notify(events))
			close(events)

			var percents []int
			for p := range events {
				percents = append(percents, p.Percent)
			}

			Convey("Then the stream ends at 100", func() {
				So(len(percents), ShouldBeGreaterThan, 0)
				So(percents[len(percents)-1], ShouldEqual, 100)
			})
		})
	})
}

func TestFilterDivergence(t *testing.T) {
	Convey("Given a pair with high bigram similarity but disjoint tokens", t, func() {
		left := rows("Description", "paracetamol tablets")
		right := rows("Long Description", "paracetamol-tabs")
		s := spec()
		s.MinThreshold = 50

		Convey("When running both entry points", func() {
			e := engine.New()
			filtered, _ := e.Run(context.Background(), left, right, s, nil)
			direct, _ := e.MatchAll(context.Background(), left, right, s)

			Convey("Then the filtered path prunes what the direct path finds", func() {
				// Accepted recall trade of the candidate filter.
				So(len(direct), ShouldEqual, 1)
				So(direct[0].Score, ShouldBeGreaterThan, 50)
				So(len(filtered), ShouldEqual, 0)
			})
		})

		Convey("When running the chunked path with filtering disabled", func() {
			e := engine.New(engine.WithStrategy(filter.None{}))
			results, _ := e.Run(context.Background(), left, right, s, nil)

			Convey("Then it agrees with the direct path", func() {
				So(len(results), ShouldEqual, 1)
			})
		})
	})
}
