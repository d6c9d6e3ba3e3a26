package id

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestID(t *testing.T) {
	Convey("New 生成合法且不重复的 UUID", t, func() {
		a, b := New(), New()
		_, err := uuid.Parse(a)
		So(err, ShouldBeNil)
		So(a, ShouldNotEqual, b)
	})

	Convey("Short 截取前 8 位", t, func() {
		So(Short("123e4567-e89b-12d3-a456-426614174000"), ShouldEqual, "123e4567")
		So(Short("ab-c"), ShouldEqual, "abc")
		So(Short(""), ShouldEqual, "")
	})
}
