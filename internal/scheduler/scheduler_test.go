package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/fantaleague/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshLeagues(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestScheduler(t *testing.T) {
	Convey("Given an initialised logger", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()

		Convey("A zero interval registers no jobs", func() {
			s, err := New(0, &countingRefresher{})
			So(err, ShouldBeNil)
			So(s.Jobs(), ShouldEqual, 0)
			So(s.Stop(ctx), ShouldBeNil)
		})

		Convey("A positive interval refreshes immediately and repeatedly", func() {
			r := &countingRefresher{}
			s, err := New(20*time.Millisecond, r)
			So(err, ShouldBeNil)
			So(s.Jobs(), ShouldEqual, 1)
			s.Start(ctx)

			deadline := time.Now().Add(2 * time.Second)
			for r.calls.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(s.Stop(ctx), ShouldBeNil)
			So(s.Stop(ctx), ShouldBeNil)
			So(r.calls.Load(), ShouldBeGreaterThanOrEqualTo, 2)
		})

		Convey("Refresh failures do not stop the job", func() {
			r := &countingRefresher{err: errors.New("db down")}
			s, err := New(10*time.Millisecond, r)
			So(err, ShouldBeNil)
			s.Start(ctx)

			deadline := time.Now().Add(2 * time.Second)
			for r.calls.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(s.Stop(ctx), ShouldBeNil)
			So(r.calls.Load(), ShouldBeGreaterThanOrEqualTo, 2)
		})

		Convey("A nil scheduler reports it was never initialised", func() {
			var s *Scheduler
			So(errors.Is(s.Stop(ctx), ErrNotInitialized), ShouldBeTrue)
		})
	})
}
