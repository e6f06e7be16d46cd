package telemetry

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/gorustyt/gonavbot/avoidance"
)

// BotSummary aggregates the records of one bot.
type BotSummary struct {
	BotID       uint32  `csv:"bot"`
	Samples     int     `csv:"samples"`
	MeanSpeed   float64 `csv:"mean_speed"`
	StdSpeed    float64 `csv:"std_speed"`
	P90Speed    float64 `csv:"p90_speed"`
	Distance    float64 `csv:"distance"`
	ModeChanges int     `csv:"mode_changes"`
	Arrived     bool    `csv:"arrived"`
	ArrivalTime float64 `csv:"arrival_time"` ///< -1 when the bot never arrived.

	// Share of the samples spent in each global mode.
	NormalShare    float64 `csv:"normal"`
	StandardShare  float64 `csv:"standard"`
	CrowdingShare  float64 `csv:"crowding"`
	RejoiningShare float64 `csv:"rejoining"`
	StuckShare     float64 `csv:"stuck"`
}

// Summarize groups records by bot, in ascending bot id. Records of a bot are
// expected in time order.
func Summarize(records []Record) []BotSummary {
	byBot := make(map[uint32][]Record)
	for _, r := range records {
		byBot[r.BotID] = append(byBot[r.BotID], r)
	}
	ids := make([]uint32, 0, len(byBot))
	for id := range byBot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	res := make([]BotSummary, 0, len(ids))
	for _, id := range ids {
		res = append(res, summarizeBot(id, byBot[id]))
	}
	return res
}

func summarizeBot(id uint32, recs []Record) BotSummary {
	s := BotSummary{BotID: id, Samples: len(recs), ArrivalTime: -1}
	speeds := make([]float64, len(recs))
	var shares [avoidance.GLOBAL_MODE_COUNT]float64
	for i, r := range recs {
		speeds[i] = float64(r.Speed)
		if g, ok := globalModeByName[r.GlobalMode]; ok {
			shares[g]++
		}
		if i > 0 {
			p := &recs[i-1]
			dx, dy := float64(r.X-p.X), float64(r.Y-p.Y)
			s.Distance += math.Hypot(dx, dy)
			if r.Mode != p.Mode {
				s.ModeChanges++
			}
		}
		if r.Arrived && !s.Arrived {
			s.Arrived = true
			s.ArrivalTime = r.Time
		}
	}
	s.MeanSpeed, s.StdSpeed = stat.MeanStdDev(speeds, nil)
	if len(recs) < 2 {
		s.StdSpeed = 0
	}
	sort.Float64s(speeds)
	s.P90Speed = stat.Quantile(0.9, stat.Empirical, speeds, nil)

	n := float64(len(recs))
	s.NormalShare = shares[avoidance.GLOBAL_NORMAL] / n
	s.StandardShare = shares[avoidance.GLOBAL_STANDARD] / n
	s.CrowdingShare = shares[avoidance.GLOBAL_CROWDING] / n
	s.RejoiningShare = shares[avoidance.GLOBAL_REJOINING_ORIGINAL_PATH] / n
	s.StuckShare = shares[avoidance.GLOBAL_STUCK] / n
	return s
}

var globalModeByName = func() map[string]avoidance.GlobalMode {
	m := make(map[string]avoidance.GlobalMode, avoidance.GLOBAL_MODE_COUNT)
	for g := avoidance.GlobalMode(0); g < avoidance.GLOBAL_MODE_COUNT; g++ {
		m[g.String()] = g
	}
	return m
}()

func WriteSummaryCSV(summaries []BotSummary, out io.Writer) error {
	if err := gocsv.Marshal(summaries, out); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
