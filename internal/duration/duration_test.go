package duration

import (
	"testing"
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61*time.Minute + 5*time.Second, "01:01:05"},
		{26 * time.Hour, "26:00:00"},
		{-time.Second, "00:00:00"},
		{1500 * time.Millisecond, "00:00:01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "01:02:03", want: time.Hour + 2*time.Minute + 3*time.Second},
		{in: "12:30", want: 12*time.Minute + 30*time.Second},
		{in: "90", want: 90 * time.Second},
		{in: " 00:00:10 ", want: 10 * time.Second},
		{in: "", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "aa:bb", wantErr: true},
		{in: "-5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTracker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	tr := NewTracker(clock.Now)

	assert.False(t, tr.Running())
	assert.Equal(t, "00:00:00", tr.Display())

	started := tr.Start()
	gen := tr.Generation()
	assert.Equal(t, clock.now, started)
	assert.True(t, tr.Running())

	clock.Advance(3*time.Minute + 7*time.Second)
	assert.Equal(t, "00:03:07", tr.Display())

	concluded, formatted := tr.Snapshot()
	assert.Equal(t, clock.now, concluded)
	assert.Equal(t, "00:03:07", formatted)
	assert.True(t, tr.Running(), "snapshot does not stop the timer")

	tr.Stop()
	assert.False(t, tr.Running())
	assert.NotEqual(t, gen, tr.Generation(), "stop must invalidate pending ticks")
	assert.Equal(t, time.Duration(0), tr.Elapsed())
}

func TestComputeTMA(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	records := []model.Record{
		{Analyst: "ana", Status: model.StatusApproved, ConcludedAt: day(1), Duration: "00:10:00"},
		{Analyst: "ana", Status: model.StatusRejected, ConcludedAt: day(2), Duration: "20:00"},
		{Analyst: "bruno", Status: model.StatusApproved, ConcludedAt: day(2), Duration: "300"},
		{Analyst: "bruno", Status: model.StatusPending, ConcludedAt: day(2), Duration: "99:00:00"},
		{Analyst: "bruno", Status: model.StatusApproved, ConcludedAt: day(2), Duration: "garbage"},
		{Analyst: "carla", Status: model.StatusApproved, ConcludedAt: day(20), Duration: "00:01:00"},
	}

	manager := model.User{Login: "gestor", Profile: model.ProfileManager}
	analyst := model.User{Login: "ana", Profile: "analista"}

	t.Run("manager sees everyone in range", func(t *testing.T) {
		got := ComputeTMA(records, Query{Start: day(1), End: day(10), Viewer: manager})
		require.Len(t, got, 2)
		assert.Equal(t, AnalystTMA{Analyst: "ana", Count: 2, Total: 30 * time.Minute}, got[0])
		assert.Equal(t, 15*time.Minute, got[0].Average())
		assert.Equal(t, AnalystTMA{Analyst: "bruno", Count: 1, Total: 5 * time.Minute}, got[1])
	})

	t.Run("manager picks one analyst", func(t *testing.T) {
		got := ComputeTMA(records, Query{Viewer: manager, Analyst: "carla"})
		require.Len(t, got, 1)
		assert.Equal(t, "carla", got[0].Analyst)
	})

	t.Run("analyst only sees self", func(t *testing.T) {
		got := ComputeTMA(records, Query{Viewer: analyst, Analyst: "bruno"})
		require.Len(t, got, 1)
		assert.Equal(t, "ana", got[0].Analyst)
	})

	t.Run("empty average", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), AnalystTMA{}.Average())
	})
}
