package telemetry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathfinder"
	"github.com/gorustyt/gonavbot/spatial"
	"github.com/gorustyt/gonavbot/world"
)

func walkingWorld(t *testing.T) *world.World {
	g := navgraph.BuildGrid(navmesh.OpenTerrain{}, navgraph.GridConfig{
		BMin:     common.Vec2{0, -2},
		BMax:     common.Vec2{6, 2},
		Spacing:  1,
		CellSize: 4,
	})
	w := world.New(world.DefaultConfig(), navmesh.OpenTerrain{}, g, nil, nil)
	b, err := w.AddBot(&spatial.Body{ID: 1, Shape: spatial.ShapeCircular, Radius: 0.4, MaxSpeed: 1},
		avoidance.DefaultParams(), pathfinder.DefaultParams())
	require.NoError(t, err)
	b.SetDestination(common.Vec3{5, 0, 0})
	return w
}

func TestRecorderCSVRoundTrip(t *testing.T) {
	w := walkingWorld(t)
	rec := NewRecorder(2)
	for i := 0; i < 10; i++ {
		w.Update(0.25)
		rec.Capture(w)
	}
	require.Len(t, rec.Records(), 5)
	assert.Equal(t, uint64(2), rec.Records()[0].Frame)
	assert.Equal(t, "Normal", rec.Records()[4].Mode)
	assert.Equal(t, "Succeeded", rec.Records()[4].PathStatus)
	assert.Greater(t, rec.Records()[4].X, float32(0))

	var buf bytes.Buffer
	require.NoError(t, rec.WriteCSV(&buf))
	assert.Contains(t, buf.String(), "frame,time,bot,x,y")
	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rec.Records(), back)

	rec.Reset()
	assert.Empty(t, rec.Records())
}

func TestStreamWriterWritesOneHeader(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamWriter(&buf)
	require.NoError(t, s.Write([]Record{{Frame: 1, BotID: 1, Mode: "Normal"}}))
	require.NoError(t, s.Write(nil))
	require.NoError(t, s.Write([]Record{{Frame: 2, BotID: 1, Mode: "Stuck"}}))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("frame,")))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Stuck", back[1].Mode)
}

func TestSummarize(t *testing.T) {
	rec := func(bot uint32, time float64, x, speed float32, mode string, global string, arrived bool) Record {
		return Record{BotID: bot, Time: time, X: x, Speed: speed, Mode: mode, GlobalMode: global, Arrived: arrived}
	}
	records := []Record{
		rec(2, 0.1, 0, 0, "Normal", "Normal", false),
		rec(1, 0.1, 0, 1, "Normal", "Normal", false),
		rec(1, 0.2, 1, 1, "Normal", "Normal", false),
		rec(2, 0.2, 0, 2, "Stuck", "Stuck", false),
		rec(1, 0.3, 2, 1, "Standard_Avoiding", "Standard", false),
		rec(1, 0.4, 3, 1, "Normal", "Normal", true),
	}
	sums := Summarize(records)
	require.Len(t, sums, 2)

	s := sums[0]
	assert.Equal(t, uint32(1), s.BotID)
	assert.Equal(t, 4, s.Samples)
	assert.InDelta(t, 1, s.MeanSpeed, 1e-9)
	assert.InDelta(t, 0, s.StdSpeed, 1e-9)
	assert.InDelta(t, 3, s.Distance, 1e-9)
	assert.Equal(t, 2, s.ModeChanges)
	assert.True(t, s.Arrived)
	assert.Equal(t, 0.4, s.ArrivalTime)
	assert.InDelta(t, 0.75, s.NormalShare, 1e-9)
	assert.InDelta(t, 0.25, s.StandardShare, 1e-9)

	s = sums[1]
	assert.InDelta(t, 1, s.MeanSpeed, 1e-9)
	assert.InDelta(t, 1.4142135, s.StdSpeed, 1e-6)
	assert.InDelta(t, 2, s.P90Speed, 1e-9)
	assert.InDelta(t, 0.5, s.StuckShare, 1e-9)
	assert.False(t, s.Arrived)
	assert.Equal(t, -1.0, s.ArrivalTime)
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := walkingWorld(t)
	w.Update(0.25)
	w.Update(0.25)

	data, err := Snapshot(w)
	require.NoError(t, err)
	fields, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fields["frame"])
	assert.Equal(t, 0.5, fields["time"])
	bots, ok := fields["bots"].([]any)
	require.True(t, ok)
	require.Len(t, bots, 1)
	bot := bots[0].(map[string]any)
	assert.Equal(t, 1.0, bot["id"])
	assert.Equal(t, "Normal", bot["mode"])
	assert.IsType(t, []any{}, bot["candidates"])

	_, err = DecodeSnapshot([]byte{0xff})
	assert.Error(t, err)
}
