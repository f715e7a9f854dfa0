package agg

import (
	"testing"
	"time"

	"github.com/huangsam/githours/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveWorkSplitsOnIdleGap(t *testing.T) {
	c1 := rec("Alice", at(9, 0), "start", "c1")
	c2 := rec("Alice", at(9, 30), "continue", "c2")
	c3 := rec("Alice", at(14, 0), "after lunch", "c3")
	timelines := []schema.ContributorTimeline{timeline("Alice", c1, c2, c3)}

	active := ActiveWork(timelines, DefaultThreshold)
	assert.InDelta(t, 0.5, active["Alice"], 1e-9)

	entries := TimeByCommit(timelines, DefaultThreshold)
	require.Len(t, entries, 1)
	assert.Equal(t, "c1", entries[0].ID)
	assert.Equal(t, "start", entries[0].Message)
	assert.True(t, at(9, 0).Equal(entries[0].Timestamp))
	assert.InDelta(t, 0.5, entries[0].Hours, 1e-9)
}

func TestActiveWorkThresholdIsInclusive(t *testing.T) {
	timelines := []schema.ContributorTimeline{timeline("Alice",
		rec("Alice", at(8, 0), "a", "c1"),
		rec("Alice", at(12, 0), "b", "c2"),
	)}

	assert.InDelta(t, 4.0, ActiveWork(timelines, 4*time.Hour)["Alice"], 1e-9)
	assert.Zero(t, ActiveWork(timelines, 4*time.Hour-time.Second)["Alice"])
}

func TestActiveWorkZeroOrOneCommit(t *testing.T) {
	timelines := []schema.ContributorTimeline{
		timeline("Empty"),
		timeline("Solo", rec("Solo", at(9, 0), "only", "c1")),
	}

	active := ActiveWork(timelines, DefaultThreshold)
	assert.Equal(t, schema.ActiveWorkTime{"Empty": 0, "Solo": 0}, active)
	assert.Empty(t, TimeByCommit(timelines, DefaultThreshold))
}

func TestActiveWorkSkipsNegativeGaps(t *testing.T) {
	// Out of order on purpose, as a skewed clock would produce
	timelines := []schema.ContributorTimeline{timeline("Alice",
		rec("Alice", at(10, 0), "a", "c1"),
		rec("Alice", at(9, 0), "b", "c2"),
		rec("Alice", at(9, 45), "c", "c3"),
	)}

	res := Segment(timelines, DefaultThreshold)

	assert.InDelta(t, 0.75, res.Active["Alice"], 1e-9)
	assert.Equal(t, 1, res.Anomalies)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "c2", res.Entries[0].ID)
	for _, e := range res.Entries {
		assert.GreaterOrEqual(t, e.Hours, 0.0)
	}
	require.Len(t, res.Contributors, 1)
	assert.Equal(t, 2, res.Contributors[0].Sessions)
}

func TestActiveWorkBounds(t *testing.T) {
	commits := []schema.CommitRecord{
		rec("Alice", at(1, 0), "a", "c1"),
		rec("Alice", at(2, 0), "b", "c2"),
		rec("Alice", at(9, 0), "c", "c3"),
		rec("Alice", at(9, 0), "d", "c4"),
		rec("Alice", at(11, 30), "e", "c5"),
	}
	active := ActiveWork([]schema.ContributorTimeline{timeline("Alice", commits...)}, DefaultThreshold)

	span := commits[len(commits)-1].Timestamp.Sub(commits[0].Timestamp).Hours()
	assert.GreaterOrEqual(t, active["Alice"], 0.0)
	assert.LessOrEqual(t, active["Alice"], span)
	assert.InDelta(t, 3.5, active["Alice"], 1e-9)
}

func TestSegmentSharesQualifyingGaps(t *testing.T) {
	timelines := BuildTimelines([]schema.CommitRecord{
		rec("Alice", at(9, 0), "a1", "a1"),
		rec("Bob", at(9, 0), "b1", "b1"),
		rec("Alice", at(10, 0), "a2", "a2"),
		rec("Bob", at(9, 20), "b2", "b2"),
		rec("Alice", at(20, 0), "a3", "a3"),
		rec("Bob", at(11, 20), "b3", "b3"),
	})

	res := Segment(timelines, DefaultThreshold)

	perContributor := map[string]float64{}
	for _, e := range res.Entries {
		perContributor[e.Contributor] += e.Hours
	}
	for who, hours := range res.Active {
		assert.InDelta(t, hours, perContributor[who], 1e-9, who)
	}
	assert.InDelta(t, 1.0+2+1.0/3, res.Total.Hours(), 1e-9)
}

func TestTimeByCommitOrderingIsStable(t *testing.T) {
	timelines := BuildTimelines([]schema.CommitRecord{
		rec("Bob", at(9, 0), "b1", "b1"),
		rec("Bob", at(10, 0), "b2", "b2"),
		rec("Bob", at(11, 0), "b3", "b3"),
		rec("Alice", at(9, 0), "a1", "a1"),
		rec("Alice", at(10, 0), "a2", "a2"),
		rec("Alice", at(12, 0), "a3", "a3"),
	})

	entries := TimeByCommit(timelines, DefaultThreshold)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	// a2 leads with 2h; the 1h ties keep contributor then chronological order
	assert.Equal(t, []string{"a2", "a1", "b1", "b2"}, ids)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Hours, entries[i].Hours)
	}
}

func TestTimeByCommitTiesGroupByContributor(t *testing.T) {
	timelines := BuildTimelines([]schema.CommitRecord{
		rec("Bob", at(8, 0), "b1", "b1"),
		rec("Bob", at(9, 0), "b2", "b2"),
		rec("Alice", at(13, 0), "a1", "a1"),
		rec("Alice", at(14, 0), "a2", "a2"),
		rec("Alice", at(15, 0), "a3", "a3"),
	})

	entries := TimeByCommit(timelines, DefaultThreshold)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	// Bob's tie is earlier in time but Alice sorts first by name
	assert.Equal(t, []string{"a1", "a2", "b1"}, ids)
}

func TestSegmentContributorSummaries(t *testing.T) {
	timelines := BuildTimelines([]schema.CommitRecord{
		rec("Bob", at(9, 0), "b1", "b1"),
		rec("Bob", at(9, 30), "b2", "b2"),
		rec("Alice", at(9, 0), "a1", "a1"),
		rec("Alice", at(11, 0), "a2", "a2"),
		rec("Alice", at(18, 0), "a3", "a3"),
		rec("Carol", at(9, 0), "c1", "c1"),
	})

	rows := Segment(timelines, DefaultThreshold).Contributors

	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0].Contributor)
	assert.InDelta(t, 2.0, rows[0].Hours, 1e-9)
	assert.Equal(t, 3, rows[0].Commits)
	assert.Equal(t, 2, rows[0].Sessions)
	assert.True(t, at(9, 0).Equal(rows[0].FirstCommit))
	assert.True(t, at(18, 0).Equal(rows[0].LastCommit))

	assert.Equal(t, "Bob", rows[1].Contributor)
	assert.Equal(t, 1, rows[1].Sessions)
	assert.Equal(t, "Carol", rows[2].Contributor)
	assert.Zero(t, rows[2].Hours)
	assert.Equal(t, 1, rows[2].Sessions)
}

func TestSegmentEmpty(t *testing.T) {
	res := Segment(nil, DefaultThreshold)
	assert.Empty(t, res.Active)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Contributors)
	assert.Zero(t, res.Total)
}

func TestBuildTimelines(t *testing.T) {
	records := []schema.CommitRecord{
		rec("bob", at(12, 0), "late", "b2"),
		rec("alice", at(10, 0), "first tie", "a1"),
		rec("bob", at(8, 0), "early", "b1"),
		rec("alice", at(10, 0), "second tie", "a2"),
		rec("Alice", at(9, 0), "other alice", "A1"),
	}

	timelines := BuildTimelines(records)

	require.Len(t, timelines, 3)
	assert.Equal(t, "Alice", timelines[0].Contributor)
	assert.Equal(t, "alice", timelines[1].Contributor)
	assert.Equal(t, "a1", timelines[1].Commits[0].ID)
	assert.Equal(t, "a2", timelines[1].Commits[1].ID)
	assert.Equal(t, "bob", timelines[2].Contributor)
	assert.Equal(t, "b1", timelines[2].Commits[0].ID)
	assert.Equal(t, "b2", timelines[2].Commits[1].ID)
}
