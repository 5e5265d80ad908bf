package rating_test

import (
	"math"
	"testing"

	"github.com/okian/gochamp/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFor(t *testing.T) {
	Convey("Given scores across the bands", t, func() {
		cases := []struct {
			score float64
			want  rating.Label
		}{
			{100, rating.Elite},
			{90, rating.Elite},
			{89.99, rating.Excellent},
			{80, rating.Excellent},
			{75, rating.Good},
			{60, rating.Average},
			{59.9, rating.NeedsImprovement},
			{0, rating.NeedsImprovement},
			{150, rating.Elite},
			{-3, rating.NeedsImprovement},
		}
		for _, tc := range cases {
			So(rating.For(tc.score), ShouldEqual, tc.want)
		}
	})
}

func TestForOptional(t *testing.T) {
	Convey("A missing score is not assessed", t, func() {
		So(rating.ForOptional(nil), ShouldEqual, rating.NotAssessed)

		score := 0.0
		So(rating.ForOptional(&score), ShouldEqual, rating.NeedsImprovement)
		score = 91
		So(rating.ForOptional(&score), ShouldEqual, rating.Elite)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Normalize clamps into range", t, func() {
		So(rating.Normalize(-1), ShouldEqual, 0)
		So(rating.Normalize(42), ShouldEqual, 42)
		So(rating.Normalize(101), ShouldEqual, 100)
		So(rating.Normalize(math.NaN()), ShouldEqual, 0)
	})
}
