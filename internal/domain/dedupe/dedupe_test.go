package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dedupe "github.com/okian/fantaleague/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording job keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "lg-1:3:p-1")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "lg-1:3:p-1")
				seen := d.SeenAndRecord(ctx, "lg-1:3:p-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is unrecorded", func() {
				d.SeenAndRecord(ctx, "lg-1:3:p-1")
				d.Unrecord(ctx, "lg-1:3:p-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "lg-1:3:p-1"), ShouldBeFalse)
				})
			})

			Convey("And an unknown key is unrecorded", func() {
				d.Unrecord(ctx, "missing")

				Convey("Then nothing changes", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})
		})

		Convey("When keys expire", func() {
			d := dedupe.NewInMemoryDeduper(
				dedupe.WithTTL(20*time.Millisecond),
				dedupe.WithCleanupInterval(10*time.Millisecond),
			)
			So(d.SeenAndRecord(ctx, "lg-1:3:p-1"), ShouldBeFalse)
			time.Sleep(50 * time.Millisecond)

			Convey("Then the key is accepted again", func() {
				So(d.SeenAndRecord(ctx, "lg-1:3:p-1"), ShouldBeFalse)
			})
		})

		Convey("When the ttl is disabled", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithTTL(0))
			d.SeenAndRecord(ctx, "k")

			Convey("Then keys are kept", func() {
				So(d.SeenAndRecord(ctx, "k"), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryDeduper_Concurrent(t *testing.T) {
	Convey("Given many goroutines racing on the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()
		var fresh atomic.Int64
		var wg sync.WaitGroup

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i)) {
						fresh.Add(1)
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is recorded exactly once", func() {
			So(fresh.Load(), ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
