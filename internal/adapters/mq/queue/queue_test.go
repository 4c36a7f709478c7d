package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/crosswalk/internal/adapters/mq/queue"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a new in-memory queue", t, func() {
		ctx := context.Background()

		Convey("When jobs are enqueued within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))

			for i := 0; i < 4; i++ {
				ok := q.Enqueue(ctx, queue.Job{RunID: fmt.Sprintf("run-%d", i)})
				So(ok, ShouldBeTrue)
			}

			Convey("Then they are all buffered", func() {
				So(q.Len(ctx), ShouldEqual, 4)
			})

			Convey("And the next enqueue is refused", func() {
				So(q.Enqueue(ctx, queue.Job{RunID: "overflow"}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 4)
			})
		})

		Convey("When jobs are dequeued", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			So(q.Enqueue(ctx, queue.Job{RunID: "run-a"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{RunID: "run-b"}), ShouldBeTrue)

			Convey("Then they arrive in FIFO order", func() {
				jobs := q.Dequeue(ctx)
				first := <-jobs
				second := <-jobs
				So(first.RunID, ShouldEqual, "run-a")
				So(second.RunID, ShouldEqual, "run-b")
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			So(q.Enqueue(ctx, queue.Job{RunID: "run-a"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then new enqueues are refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Job{RunID: "late"}), ShouldBeFalse)
			})

			Convey("Then the dequeue channel drains and closes", func() {
				jobs := q.Dequeue(ctx)
				job, ok := <-jobs
				So(ok, ShouldBeTrue)
				So(job.RunID, ShouldEqual, "run-a")

				select {
				case _, ok := <-jobs:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the consumer context is cancelled", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			cctx, cancel := context.WithCancel(ctx)
			jobs := q.Dequeue(cctx)
			cancel()

			Convey("Then the wrapper goroutine stops", func() {
				So(q.Enqueue(ctx, queue.Job{RunID: "run-a"}), ShouldBeTrue)
				// At most one in-flight job may still be delivered before
				// the cancellation is observed.
				deadline := time.After(time.Second)
				for {
					select {
					case _, ok := <-jobs:
						if !ok {
							return
						}
					case <-deadline:
						t.Fatal("dequeue channel did not close after cancel")
					}
				}
			})
		})
	})
}
