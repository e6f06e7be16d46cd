package telemetry

import (
	"github.com/gorustyt/gonavbot/common/message"
	"github.com/gorustyt/gonavbot/world"
)

// Snapshot encodes the current state of every bot, candidates included, as
// a protobuf Struct.
func Snapshot(w *world.World) ([]byte, error) {
	bots := make([]any, 0, len(w.Bots()))
	for _, b := range w.Bots() {
		r := sample(w, b)
		cands := make([]any, 0, len(b.Avoidance.Candidates()))
		for _, c := range b.Avoidance.Candidates() {
			cands = append(cands, map[string]any{
				"abscissa": c.Abscissa,
				"cost":     c.Cost,
				"speed":    c.Speed,
				"mode":     c.Mode.String(),
				"blocked":  c.Blocked,
			})
		}
		bots = append(bots, map[string]any{
			"id":          r.BotID,
			"x":           r.X,
			"y":           r.Y,
			"heading":     r.Heading,
			"speed":       r.Speed,
			"mode":        r.Mode,
			"strategy":    r.Strategy,
			"risk":        r.Risk,
			"path_status": r.PathStatus,
			"path_error":  r.PathError,
			"path_nodes":  r.PathNodes,
			"arrived":     r.Arrived,
			"candidates":  cands,
		})
	}
	return message.EncodeFields(map[string]any{
		"frame": w.Frame(),
		"time":  w.Now(),
		"bots":  bots,
	})
}

// DecodeSnapshot returns the fields of a snapshot. Numbers decode as float64.
func DecodeSnapshot(data []byte) (map[string]any, error) {
	return message.DecodeFields(data)
}
