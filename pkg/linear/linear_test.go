package linear_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/linear"
)

func TestAllocator(t *testing.T) {
	Convey("Given a fresh linear allocator", t, func() {
		a := linear.New()

		Convey("Allocating two uint32s packs them back-to-back", func() {
			p1 := a.Alloc(4, 4)
			p2 := a.Alloc(4, 4)

			So(p1, ShouldNotBeNil)
			So(p2, ShouldNotBeNil)
			So(uintptr(p1)%4, ShouldEqual, uintptr(0))
			So(uintptr(p2)%4, ShouldEqual, uintptr(0))
			So(uintptr(p2)-uintptr(p1), ShouldEqual, uintptr(4))
		})

		Convey("Allocating a uint32 then a uint64 pads between them", func() {
			p1 := a.Alloc(4, 4)
			p2 := a.Alloc(8, 8)

			So(p1, ShouldNotBeNil)
			So(p2, ShouldNotBeNil)
			So(uintptr(p2)%8, ShouldEqual, uintptr(0))
			So(uintptr(p2)-uintptr(p1), ShouldEqual, uintptr(8))
		})

		Convey("Addresses returned within a session strictly increase", func() {
			prev := uintptr(0)
			for i := 0; i < 100; i++ {
				p := a.Alloc(8, 8)
				So(p, ShouldNotBeNil)
				So(uintptr(p), ShouldBeGreaterThan, prev)
				prev = uintptr(p)
			}
		})

		Convey("Exhausting the arena returns nil", func() {
			var last unsafe.Pointer
			for {
				p := a.Alloc(1024, 8)
				if p == nil {
					break
				}
				last = p
			}
			So(last, ShouldNotBeNil)
			So(a.Alloc(1, 1), ShouldBeNil)
		})

		Convey("Dealloc is a no-op", func() {
			p1 := a.Alloc(8, 8)
			a.Dealloc(p1, 8, 8)

			p2 := a.Alloc(8, 8)
			So(p2, ShouldNotEqual, p1)
		})

		Convey("Successful allocations never overlap", func() {
			var ptrs, sizes []uintptr
			for i := 0; i < 50; i++ {
				size := uintptr(8 + i)
				p := a.Alloc(size, 8)
				So(p, ShouldNotBeNil)
				ptrs = append(ptrs, uintptr(p))
				sizes = append(sizes, size)
			}
			for i := range ptrs {
				for j := range ptrs {
					if i != j {
						So(ptrs[i]+sizes[i] <= ptrs[j] || ptrs[j]+sizes[j] <= ptrs[i], ShouldBeTrue)
					}
				}
			}
		})
	})
}

func TestAllocator_ArenaSize(t *testing.T) {
	if arena.Size != 128*1024 {
		t.Fatalf("unexpected arena size: %d", arena.Size)
	}
}
