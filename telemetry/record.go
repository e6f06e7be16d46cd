// Package telemetry samples the bots of a world into flat records, writes
// them as CSV and summarizes them.
package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/world"
)

// Record is the state of one bot at one frame.
type Record struct {
	Frame      uint64  `csv:"frame"`
	Time       float64 `csv:"time"`
	BotID      uint32  `csv:"bot"`
	X          float32 `csv:"x"`
	Y          float32 `csv:"y"`
	Heading    float32 `csv:"heading"`
	Speed      float32 `csv:"speed"`
	Mode       string  `csv:"mode"`
	GlobalMode string  `csv:"global_mode"`
	Strategy   string  `csv:"strategy"`
	Risk       bool    `csv:"risk"`
	Candidates int     `csv:"candidates"`
	PathStatus string  `csv:"path_status"`
	PathError  string  `csv:"path_error"`
	PathNodes  int     `csv:"path_nodes"`
	Remaining  float32 `csv:"remaining"`
	Arrived    bool    `csv:"arrived"`
}

func sample(w *world.World, b *world.Bot) Record {
	body := b.Body
	pf := b.PathFinder
	path := pf.Path()
	return Record{
		Frame:      w.Frame(),
		Time:       w.Now(),
		BotID:      uint32(body.ID),
		X:          body.Position.X(),
		Y:          body.Position.Y(),
		Heading:    body.Orientation,
		Speed:      body.Speed(),
		Mode:       b.Avoidance.Mode().String(),
		GlobalMode: b.Avoidance.GlobalMode().String(),
		Strategy:   b.Avoidance.Strategy().String(),
		Risk:       b.Avoidance.Risk(),
		Candidates: len(b.Avoidance.Candidates()),
		PathStatus: pf.GetPathStatus().String(),
		PathError:  pf.GetLastError().String(),
		PathNodes:  path.Len(),
		Remaining:  remaining(b),
		Arrived:    b.Arrived(),
	}
}

// remaining is the distance left along the path.
func remaining(b *world.Bot) float32 {
	path := b.PathFinder.Path()
	next := b.PathFinder.NextNodeIndex()
	if next >= path.Len() {
		return 0
	}
	return common.Vdist2D(b.Body.Position, path.Nodes[next].Pos) + path.Length(next)
}

// Recorder keeps one record per bot every Every frames.
type Recorder struct {
	Every   int
	records []Record
}

func NewRecorder(every int) *Recorder {
	return &Recorder{Every: max(every, 1)}
}

// Capture samples every bot when the world frame is on the recording period.
func (r *Recorder) Capture(w *world.World) {
	if w.Frame()%uint64(r.Every) != 0 {
		return
	}
	for _, b := range w.Bots() {
		r.records = append(r.records, sample(w, b))
	}
}

func (r *Recorder) Records() []Record { return r.records }

func (r *Recorder) Reset() { r.records = r.records[:0] }

func (r *Recorder) WriteCSV(out io.Writer) error {
	if err := gocsv.Marshal(r.records, out); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (r *Recorder) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return r.WriteCSV(f)
}

func ReadCSV(in io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}

// StreamWriter appends records to a CSV file as they are produced, the
// header going with the first batch.
type StreamWriter struct {
	out           io.Writer
	headerWritten bool
}

func NewStreamWriter(out io.Writer) *StreamWriter { return &StreamWriter{out: out} }

func (s *StreamWriter) Write(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		s.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.out); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}
