package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	dedupe "github.com/okian/crosswalk/internal/domain/dedupe"
)

func TestInMemoryRegistry(t *testing.T) {
	Convey("Given a new in-memory registry", t, func() {
		ctx := context.Background()

		Convey("When a key is claimed for the first time", func() {
			r := dedupe.NewInMemoryRegistry()
			runID, existed := r.Claim(ctx, "req-1", "run-a")

			Convey("Then it binds the key to the run", func() {
				So(existed, ShouldBeFalse)
				So(runID, ShouldEqual, "run-a")
				So(r.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is claimed twice", func() {
			r := dedupe.NewInMemoryRegistry()
			r.Claim(ctx, "req-1", "run-a")
			runID, existed := r.Claim(ctx, "req-1", "run-b")

			Convey("Then the original run ID wins", func() {
				So(existed, ShouldBeTrue)
				So(runID, ShouldEqual, "run-a")
				So(r.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a claim is forgotten", func() {
			r := dedupe.NewInMemoryRegistry()
			r.Claim(ctx, "req-1", "run-a")
			r.Forget(ctx, "req-1")

			Convey("Then the key can be claimed again", func() {
				So(r.Size(), ShouldEqual, 0)
				runID, existed := r.Claim(ctx, "req-1", "run-b")
				So(existed, ShouldBeFalse)
				So(runID, ShouldEqual, "run-b")
			})
		})

		Convey("When forgetting an unknown key", func() {
			r := dedupe.NewInMemoryRegistry()
			r.Forget(ctx, "nonexistent")

			Convey("Then the size is unchanged", func() {
				So(r.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the registry is bounded and at capacity", func() {
			r := dedupe.NewInMemoryRegistry(dedupe.WithMaxSize(3))
			for i := 1; i <= 3; i++ {
				_, existed := r.Claim(ctx, fmt.Sprintf("req-%d", i), fmt.Sprintf("run-%d", i))
				So(existed, ShouldBeFalse)
			}
			So(r.Size(), ShouldEqual, 3)

			Convey("And another key is claimed", func() {
				_, existed := r.Claim(ctx, "req-4", "run-4")

				Convey("Then the oldest claim is evicted", func() {
					So(existed, ShouldBeFalse)
					So(r.Size(), ShouldEqual, 3)

					// req-1 was evicted so a fresh claim succeeds
					runID, existed := r.Claim(ctx, "req-1", "run-1b")
					So(existed, ShouldBeFalse)
					So(runID, ShouldEqual, "run-1b")
					So(r.Size(), ShouldEqual, 3)
				})
			})
		})

		Convey("When the registry is unbounded", func() {
			r := dedupe.NewInMemoryRegistry(dedupe.WithMaxSize(0))

			const numKeys = 1000
			for i := 0; i < numKeys; i++ {
				_, existed := r.Claim(ctx, fmt.Sprintf("req-%d", i), fmt.Sprintf("run-%d", i))
				So(existed, ShouldBeFalse)
			}

			Convey("Then nothing is evicted", func() {
				So(r.Size(), ShouldEqual, int64(numKeys))
				runID, existed := r.Claim(ctx, "req-0", "run-new")
				So(existed, ShouldBeTrue)
				So(runID, ShouldEqual, "run-0")
			})
		})
	})
}

func TestRegistryConcurrency(t *testing.T) {
	Convey("Given a registry with concurrent access", t, func() {
		r := dedupe.NewInMemoryRegistry(dedupe.WithMaxSize(1000))
		const numGoroutines = 10
		const claimsPerGoroutine = 100

		Convey("When multiple goroutines claim keys concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < claimsPerGoroutine; j++ {
						key := fmt.Sprintf("req-%d-%d", id, j)
						r.Claim(context.Background(), key, "run-"+key)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every claim is recorded exactly once", func() {
				So(r.Size(), ShouldEqual, int64(numGoroutines*claimsPerGoroutine))
			})
		})

		Convey("When goroutines race on the same key", func() {
			var wg sync.WaitGroup
			winners := make(chan string, numGoroutines)
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					runID, _ := r.Claim(context.Background(), "shared", fmt.Sprintf("run-%d", id))
					winners <- runID
				}(i)
			}
			wg.Wait()
			close(winners)

			Convey("Then all callers observe the same run ID", func() {
				var first string
				for runID := range winners {
					if first == "" {
						first = runID
					}
					So(runID, ShouldEqual, first)
				}
			})
		})
	})
}
