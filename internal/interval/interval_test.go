package interval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinuteOfDay(t *testing.T) {
	cases := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{clock: "00:00", want: 0},
		{clock: "09:00", want: 540},
		{clock: "17:30", want: 1050},
		{clock: "24:00", want: 1440},
		{clock: "24:01", wantErr: true},
		{clock: "09:60", wantErr: true},
		{clock: "9", wantErr: true},
		{clock: "ab:cd", wantErr: true},
	}

	for _, tc := range cases {
		got, err := MinuteOfDay(tc.clock)
		if tc.wantErr {
			require.Error(t, err, tc.clock)
			continue
		}
		require.NoError(t, err, tc.clock)
		require.Equal(t, tc.want, got, tc.clock)
	}
}

func TestFormatMinute(t *testing.T) {
	require.Equal(t, "00:00", FormatMinute(0))
	require.Equal(t, "09:05", FormatMinute(545))
	require.Equal(t, "24:00", FormatMinute(1440))
}

func TestMergeCoalescesOverlapAndAdjacency(t *testing.T) {
	spans := []Span{
		{Start: 600, End: 660},
		{Start: 540, End: 600},
		{Start: 630, End: 720},
		{Start: 800, End: 830},
		{Start: 830, End: 830}, // empty, dropped
	}

	merged := Merge(spans)
	require.Equal(t, []Span{{Start: 540, End: 720}, {Start: 800, End: 830}}, merged)
}

func TestMergeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		spans := randomSpans(rng, 12)
		once := Merge(spans)
		twice := Merge(once)
		require.Equal(t, once, twice)
	}
}

func TestComplement(t *testing.T) {
	busy := []Span{{Start: 540, End: 600}, {Start: 780, End: 840}}

	gaps := Complement(busy, 480, 1020)
	require.Equal(t, []Span{
		{Start: 480, End: 540},
		{Start: 600, End: 780},
		{Start: 840, End: 1020},
	}, gaps)

	require.Equal(t, []Span{{Start: 0, End: MinutesPerDay}}, Complement(nil, 0, MinutesPerDay))
	require.Nil(t, Complement(busy, 600, 600))
}

func TestComplementIsInverseWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		spans := Merge(randomSpans(rng, 8))
		restored := Complement(Complement(spans, 0, MinutesPerDay), 0, MinutesPerDay)
		if len(spans) == 0 {
			require.Empty(t, restored)
			continue
		}
		require.Equal(t, spans, restored)
	}
}

func TestSubtract(t *testing.T) {
	base := []Span{{Start: 540, End: 1020}}
	remove := []Span{{Start: 600, End: 660}, {Start: 900, End: 1080}}

	require.Equal(t, []Span{
		{Start: 540, End: 600},
		{Start: 660, End: 900},
	}, Subtract(base, remove))

	// Removing a superset empties the base.
	require.Empty(t, Subtract(base, []Span{{Start: 0, End: MinutesPerDay}}))

	// Removing nothing keeps the merged base.
	require.Equal(t, Merge(base), Subtract(base, nil))
}

func TestIntersect(t *testing.T) {
	a := []Span{{Start: 540, End: 720}, {Start: 780, End: 900}}
	b := []Span{{Start: 600, End: 810}}

	require.Equal(t, []Span{
		{Start: 600, End: 720},
		{Start: 780, End: 810},
	}, Intersect(a, b))

	// Disjoint sets intersect to nothing, not an error.
	require.Empty(t, Intersect(a, []Span{{Start: 0, End: 540}}))
}

func TestIntersectCommutative(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for i := 0; i < 50; i++ {
		a := randomSpans(rng, 8)
		b := randomSpans(rng, 8)
		require.Equal(t, Intersect(a, b), Intersect(b, a))
	}
}

func TestIntersectMonotonic(t *testing.T) {
	// Adding a participant can only shrink the common minutes.
	rng := rand.New(rand.NewSource(31))
	for i := 0; i < 50; i++ {
		a := randomSpans(rng, 8)
		b := randomSpans(rng, 8)
		c := randomSpans(rng, 8)

		two := Intersect(a, b)
		three := IntersectAll(a, b, c)
		require.LessOrEqual(t, Total(three), Total(two))
		for _, s := range three {
			require.True(t, covered(two, s), "span %v not in two-way intersection", s)
		}
	}
}

func TestIntersectAll(t *testing.T) {
	require.Nil(t, IntersectAll())
	require.Equal(t, []Span{{Start: 540, End: 600}}, IntersectAll([]Span{{Start: 540, End: 600}}))

	sets := [][]Span{
		{{Start: 540, End: 1020}},
		{{Start: 600, End: 960}},
		{{Start: 630, End: 1080}},
	}
	require.Equal(t, []Span{{Start: 630, End: 960}}, IntersectAll(sets...))
}

func TestSlots(t *testing.T) {
	free := []Span{{Start: 540, End: 660}}

	require.Equal(t, []Span{
		{Start: 540, End: 600},
		{Start: 570, End: 630},
		{Start: 600, End: 660},
	}, Slots(free, 30, 60))

	// A slot never straddles two free spans.
	split := []Span{{Start: 540, End: 600}, {Start: 610, End: 670}}
	require.Equal(t, []Span{
		{Start: 540, End: 600},
		{Start: 610, End: 670},
	}, Slots(split, 30, 60))

	require.Nil(t, Slots(free, 0, 60))
	require.Nil(t, Slots(free, 30, 0))
}

func randomSpans(rng *rand.Rand, n int) []Span {
	spans := make([]Span, 0, n)
	for i := 0; i < n; i++ {
		start := rng.Intn(MinutesPerDay)
		spans = append(spans, Span{Start: start, End: start + rng.Intn(180)})
	}
	return spans
}

func covered(set []Span, s Span) bool {
	for _, candidate := range Merge(set) {
		if candidate.Contains(s) {
			return true
		}
	}
	return false
}
