package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/rd2weekly/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("A new key is recorded", func() {
			So(d.SeenAndRecord(ctx, "3:abc"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)

			Convey("And the same key is then seen", func() {
				So(d.SeenAndRecord(ctx, "3:abc"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording allows a retry", func() {
				d.Unrecord(ctx, "3:abc")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "3:abc"), ShouldBeFalse)
			})
		})

		Convey("Unrecording an unknown key is a no-op", func() {
			d.Unrecord(ctx, "missing")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		d.SeenAndRecord(ctx, "a")
		d.SeenAndRecord(ctx, "b")
		d.SeenAndRecord(ctx, "c")

		Convey("The oldest key is evicted first", func() {
			So(d.Size(), ShouldEqual, 2)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 5000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprint(i))
		}
		So(d.Size(), ShouldEqual, 5000)
	})

	Convey("Concurrent submissions of one key record it once", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "same") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		So(fresh, ShouldEqual, 1)
	})
}

func TestKey(t *testing.T) {
	Convey("Keys depend on period and content", t, func() {
		a := dedupe.Key(3, []byte(`{"number":3}`))
		So(a, ShouldStartWith, "3:")
		So(dedupe.Key(3, []byte(`{"number":3}`)), ShouldEqual, a)
		So(dedupe.Key(4, []byte(`{"number":3}`)), ShouldNotEqual, a)
		So(dedupe.Key(3, []byte(`{"number":3} `)), ShouldNotEqual, a)
	})
}
