package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSource serves entries for ids in have and remembers every lookup.
type recordingSource struct {
	have    map[int]bool
	visited []int
}

func newRecordingSource(ids ...int) *recordingSource {
	s := &recordingSource{have: make(map[int]bool)}
	for _, id := range ids {
		s.have[id] = true
	}
	return s
}

func (s *recordingSource) Entry(id int) (Entry, bool) {
	s.visited = append(s.visited, id)
	if !s.have[id] {
		return Entry{}, false
	}
	return Entry{Number: id, Text: fmt.Sprintf("line %d", id), CharacterName: "Joshua"}, true
}

type boundedSource struct {
	*recordingSource
	max int
}

func (s boundedSource) MaxID() int { return s.max }

func span(from, to int) []int {
	var ids []int
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}

func numbers(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Number)
	}
	return out
}

func TestScan_OpenEndedStopsAfterMissStreak(t *testing.T) {
	src := newRecordingSource(span(5, 14)...)

	entries, err := NewScanner(10).Scan(context.Background(), src, OpenRange(5))
	require.NoError(t, err)

	if diff := cmp.Diff(span(5, 14), numbers(entries)); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 24, src.visited[len(src.visited)-1], "last id probed")
	assert.Equal(t, span(5, 24), src.visited)
}

func TestScan_OpenEndedLogsStop(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	_, err := NewScanner(3).Scan(context.Background(), newRecordingSource(1), OpenRange(1))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"stopped after consecutive missing entries","misses":3,"last_id":4`)
}

func TestScan_OpenEndedGapResetsStreak(t *testing.T) {
	ids := append(span(1, 3), span(10, 12)...)
	src := newRecordingSource(ids...)

	entries, err := NewScanner(10).Scan(context.Background(), src, OpenRange(1))
	require.NoError(t, err)
	assert.Equal(t, ids, numbers(entries))
	assert.Equal(t, 22, src.visited[len(src.visited)-1])
}

func TestScan_ThresholdIsConfigurable(t *testing.T) {
	src := newRecordingSource(1, 2, 5)

	entries, err := NewScanner(2).Scan(context.Background(), src, OpenRange(1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, numbers(entries))
	assert.Equal(t, span(1, 4), src.visited)
}

func TestScan_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultMissThreshold, NewScanner(0).MissThreshold)
	assert.Equal(t, DefaultMissThreshold, NewScanner(-3).MissThreshold)
}

func TestScan_OpenEndedStopsPastMaxID(t *testing.T) {
	src := boundedSource{recordingSource: newRecordingSource(1, 2, 3), max: 3}

	entries, err := NewScanner(10).Scan(context.Background(), src, OpenRange(2))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, numbers(entries))
	assert.Equal(t, []int{2, 3}, src.visited)
}

func TestScan_Bounded(t *testing.T) {
	t.Run("single id range is inclusive", func(t *testing.T) {
		src := newRecordingSource(10)
		entries, err := NewScanner(10).Scan(context.Background(), src, NewRange(10, 10))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 10, entries[0].Number)
	})

	t.Run("visits every id despite long gaps", func(t *testing.T) {
		src := newRecordingSource(1, 30)
		entries, err := NewScanner(10).Scan(context.Background(), src, NewRange(1, 30))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 30}, numbers(entries))
		assert.Len(t, src.visited, 30)
	})

	t.Run("no hits is an empty result", func(t *testing.T) {
		entries, err := NewScanner(10).Scan(context.Background(), newRecordingSource(), NewRange(1, 5))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestScan_BoundedEndsAtMaxInt(t *testing.T) {
	src := newRecordingSource(math.MaxInt)

	entries, err := NewScanner(10).Scan(context.Background(), src, NewRange(math.MaxInt-1, math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, []int{math.MaxInt}, numbers(entries))
	assert.Equal(t, []int{math.MaxInt - 1, math.MaxInt}, src.visited)
}

func TestScan_OpenEndedEndsAtMaxInt(t *testing.T) {
	src := newRecordingSource(math.MaxInt - 1)

	entries, err := NewScanner(10).Scan(context.Background(), src, OpenRange(math.MaxInt-1))
	require.NoError(t, err)
	assert.Equal(t, []int{math.MaxInt - 1}, numbers(entries))
	assert.Equal(t, []int{math.MaxInt - 1, math.MaxInt}, src.visited)
}

func TestScan_BoundedStopsAtMaxID(t *testing.T) {
	src := boundedSource{recordingSource: newRecordingSource(1, 2, 3), max: 3}

	entries, err := NewScanner(10).Scan(context.Background(), src, NewRange(2, 20_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, numbers(entries))
	assert.Equal(t, []int{2, 3}, src.visited)
}

func TestScan_BoundedEmptySource(t *testing.T) {
	src := boundedSource{recordingSource: newRecordingSource(), max: 0}

	entries, err := NewScanner(10).Scan(context.Background(), src, NewRange(1, 100))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, src.visited)
}

func TestScan_InvalidRange(t *testing.T) {
	for _, rng := range []ScanRange{NewRange(0, 4), NewRange(5, 4), OpenRange(0)} {
		t.Run(rng.String(), func(t *testing.T) {
			_, err := NewScanner(10).Scan(context.Background(), newRecordingSource(), rng)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newRecordingSource(1, 2, 3)
	_, err := NewScanner(10).Scan(ctx, src, NewRange(1, 3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.visited)
}

func TestScanRange(t *testing.T) {
	assert.Equal(t, "1-end", OpenRange(1).String())
	assert.Equal(t, "3-9", NewRange(3, 9).String())
	assert.True(t, OpenRange(4).Contains(1_000_000))
	assert.False(t, OpenRange(4).Contains(3))
	assert.True(t, NewRange(3, 9).Contains(9))
	assert.False(t, NewRange(3, 9).Contains(10))
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("JP")
	require.NoError(t, err)
	assert.Equal(t, JP, lang)
	assert.Equal(t, "jp", lang.String())

	lang, err = ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, EN, lang)

	_, err = ParseLanguage("fr")
	assert.Error(t, err)
}
