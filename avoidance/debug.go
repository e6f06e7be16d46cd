package avoidance

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
)

// DebugData records the penalty breakdown of every generated candidate.
type DebugData struct {
	nsamples   int
	maxSamples int
	point      []common.Vec3
	abscissa   []float32
	pen        []float32
	dpen       []float32 ///< Deviation penalty.
	tpen       []float32 ///< Time to impact penalty.
	spen       []float32 ///< Speed penalty.
	ppen       []float32 ///< Polar penalty.
}

func NewDebugData(maxSamples int) *DebugData {
	return &DebugData{
		maxSamples: maxSamples,
		point:      make([]common.Vec3, maxSamples),
		abscissa:   make([]float32, maxSamples),
		pen:        make([]float32, maxSamples),
		dpen:       make([]float32, maxSamples),
		tpen:       make([]float32, maxSamples),
		spen:       make([]float32, maxSamples),
		ppen:       make([]float32, maxSamples),
	}
}

func (d *DebugData) GetSampleCount() int                        { return d.nsamples }
func (d *DebugData) GetSamplePoint(i int) common.Vec3           { return d.point[i] }
func (d *DebugData) GetSampleAbscissa(i int) float32            { return d.abscissa[i] }
func (d *DebugData) GetSamplePenalty(i int) float32             { return d.pen[i] }
func (d *DebugData) GetSampleDeviationPenalty(i int) float32    { return d.dpen[i] }
func (d *DebugData) GetSampleCollisionTimePenalty(i int) float32 { return d.tpen[i] }
func (d *DebugData) GetSampleSpeedPenalty(i int) float32        { return d.spen[i] }
func (d *DebugData) GetSamplePolarPenalty(i int) float32        { return d.ppen[i] }

func (d *DebugData) Reset() {
	d.nsamples = 0
}

func (d *DebugData) addSample(point common.Vec3, abscissa, pen, dpen, tpen, spen, ppen float32) {
	if d == nil || d.nsamples >= d.maxSamples {
		return
	}
	i := d.nsamples
	d.point[i] = point
	d.abscissa[i] = abscissa
	d.pen[i] = pen
	d.dpen[i] = dpen
	d.tpen[i] = tpen
	d.spen[i] = spen
	d.ppen[i] = ppen
	d.nsamples++
}

// NormalizeArray rescales the first n values of arr into [0,1].
func NormalizeArray(arr []float32, n int) {
	minPen := float32(math.MaxFloat32)
	maxPen := float32(-math.MaxFloat32)
	for i := 0; i < n; i++ {
		minPen = min(minPen, arr[i])
		maxPen = max(maxPen, arr[i])
	}
	penRange := maxPen - minPen
	s := float32(1)
	if penRange > 0.001 {
		s = 1.0 / penRange
	}
	for i := 0; i < n; i++ {
		arr[i] = common.Clamp((arr[i]-minPen)*s, 0.0, 1.0)
	}
}

func (d *DebugData) NormalizeSamples() {
	NormalizeArray(d.pen, d.nsamples)
	NormalizeArray(d.dpen, d.nsamples)
	NormalizeArray(d.tpen, d.nsamples)
	NormalizeArray(d.spen, d.nsamples)
	NormalizeArray(d.ppen, d.nsamples)
}
