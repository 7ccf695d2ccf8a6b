package freelist_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/memalloc/pkg/arena"
	"github.com/flier/memalloc/pkg/freelist"
)

func TestAllocator_FindFirst_SkipsBlocksThatAreTooSmall(t *testing.T) {
	Convey("Given a find-first allocator fragmented into a small hole followed by a larger hole", t, func() {
		a := freelist.New(freelist.FindFirst)

		barrier1 := a.Alloc(4, 4)
		small := a.Alloc(10, 4)
		barrier2 := a.Alloc(4, 4)
		large := a.Alloc(75, 4)
		barrier3 := a.Alloc(4, 4)
		So(barrier1, ShouldNotBeNil)
		So(small, ShouldNotBeNil)
		So(barrier2, ShouldNotBeNil)
		So(large, ShouldNotBeNil)
		So(barrier3, ShouldNotBeNil)

		a.Dealloc(small, 10, 4)
		a.Dealloc(large, 75, 4)

		Convey("A request too big for the small hole is served from the large one", func() {
			p := a.Alloc(20, 2)
			So(p, ShouldNotBeNil)
			So(uintptr(p), ShouldNotEqual, uintptr(small))
			So(uintptr(p), ShouldEqual, uintptr(large))
		})
	})
}

func TestAllocator_AllocDealloc_FindFirst(t *testing.T) {
	Convey("Given a find-first allocator", t, func() {
		a := freelist.New(freelist.FindFirst)

		Convey("Freeing and reallocating the same shape reuses the freed block", func() {
			p1 := a.Alloc(4, 4)    // u32
			p2 := a.Alloc(34*8, 8) // [u64; 34]
			So(p1, ShouldNotBeNil)
			So(p2, ShouldNotBeNil)
			So(uintptr(p1), ShouldBeLessThan, uintptr(p2))

			a.Dealloc(p1, 4, 4)

			p3 := a.Alloc(4, 4)
			So(p3, ShouldNotBeNil)
			So(uintptr(p3), ShouldEqual, uintptr(p1))

			a.Dealloc(p3, 4, 4)
			a.Dealloc(p2, 34*8, 8)
		})
	})
}

func TestAllocator_AllocDealloc_FindBest(t *testing.T) {
	Convey("Given a find-best allocator", t, func() {
		a := freelist.New(freelist.FindBest)

		Convey("Fragmenting into X _ X _ X _ and freeing two of the holes reuses the best one", func() {
			_ = a.Alloc(4, 4) // u32, stays allocated

			large := a.Alloc(34*8, 8) // [u64; 34]
			So(large, ShouldNotBeNil)

			_ = a.Alloc(4, 4) // u32, stays allocated

			best := a.Alloc(4, 4) // u32, the block we'll reuse
			So(best, ShouldNotBeNil)

			_ = a.Alloc(4, 4) // u32, stays allocated

			a.Dealloc(large, 34*8, 8)
			a.Dealloc(best, 4, 4)

			p := a.Alloc(4, 4)
			So(uintptr(p), ShouldEqual, uintptr(best))
		})
	})
}

func TestAllocator_Exhaustion(t *testing.T) {
	Convey("Given a fresh find-first allocator", t, func() {
		a := freelist.New(freelist.FindFirst)

		Convey("A request larger than the whole arena returns nil", func() {
			So(a.Alloc(1<<20, 8), ShouldBeNil)
		})

		Convey("Repeated allocation eventually exhausts the arena", func() {
			count := 0
			for {
				p := a.Alloc(256, 8)
				if p == nil {
					break
				}
				count++
			}
			So(count, ShouldBeGreaterThan, 0)
			So(a.Alloc(256, 8), ShouldBeNil)
		})
	})
}

func TestAllocator_CoalescesAdjacentFrees(t *testing.T) {
	Convey("Given a find-first allocator with three adjacent blocks allocated", t, func() {
		a := freelist.New(freelist.FindFirst)

		p1 := a.Alloc(64, 8)
		p2 := a.Alloc(64, 8)
		p3 := a.Alloc(64, 8)
		So(p1, ShouldNotBeNil)
		So(p2, ShouldNotBeNil)
		So(p3, ShouldNotBeNil)

		Convey("Freeing all three merges them back into a single block the size of a fresh arena run", func() {
			a.Dealloc(p1, 64, 8)
			a.Dealloc(p2, 64, 8)
			a.Dealloc(p3, 64, 8)

			// a single allocation spanning the whole arena (16 bytes of
			// header padding plus the payload) should now succeed, which is
			// only possible if the three runs coalesced with each other and
			// with the free tail of the arena.
			p := a.Alloc(arena.Size-16, 8)
			So(p, ShouldNotBeNil)
		})
	})
}
