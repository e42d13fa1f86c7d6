package evaluation

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

const (
	panelWidth  = 5 * vg.Inch
	panelHeight = 4 * vg.Inch

	histogramBins = 30
)

// PlotPredictions writes a two-panel figure to path: actual against predicted values with
// the identity line, and residuals against predicted values. The image format follows the
// extension (.png, .svg or .pdf).
func PlotPredictions(yTrue, yPred mat.Vector, title, path string) error {
	if yTrue.Len() != yPred.Len() {
		return errors.NewDimensionError("PlotPredictions", yTrue.Len(), yPred.Len(), 0)
	}
	n := yTrue.Len()
	if n == 0 {
		return errors.NewModelError("PlotPredictions", "empty data", errors.ErrEmptyData)
	}

	actual := make(plotter.XYs, n)
	resid := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		actual[i] = plotter.XY{X: t, Y: p}
		resid[i] = plotter.XY{X: p, Y: t - p}
	}

	left := plot.New()
	left.Title.Text = title + ": actual vs predicted"
	left.X.Label.Text = "Actual"
	left.Y.Label.Text = "Predicted"
	scatter, err := plotter.NewScatter(actual)
	if err != nil {
		return errors.Wrap(err, "failed to build scatter plot")
	}
	lo := math.Min(mat.Min(yTrue), mat.Min(yPred))
	hi := math.Max(mat.Max(yTrue), mat.Max(yPred))
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "failed to build identity line")
	}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	left.Add(scatter, identity, plotter.NewGrid())

	right := plot.New()
	right.Title.Text = title + ": residuals"
	right.X.Label.Text = "Predicted"
	right.Y.Label.Text = "Residual"
	rs, err := plotter.NewScatter(resid)
	if err != nil {
		return errors.Wrap(err, "failed to build residual plot")
	}
	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	right.Add(rs, zero, plotter.NewGrid())

	return savePanels(path, left, right)
}

// PlotResidualDistribution writes a histogram of the residuals and a normal Q-Q plot of
// the standardized residuals side by side.
func PlotResidualDistribution(yTrue, yPred mat.Vector, title, path string) error {
	if yTrue.Len() != yPred.Len() {
		return errors.NewDimensionError("PlotResidualDistribution", yTrue.Len(), yPred.Len(), 0)
	}
	n := yTrue.Len()
	if n == 0 {
		return errors.NewModelError("PlotResidualDistribution", "empty data", errors.ErrEmptyData)
	}

	res := make([]float64, n)
	for i := range res {
		res[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}

	hist := plot.New()
	hist.Title.Text = title + ": residual distribution"
	hist.X.Label.Text = "Residual"
	hist.Y.Label.Text = "Count"
	h, err := plotter.NewHist(plotter.Values(res), histogramBins)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	hist.Add(h)

	qq := plot.New()
	qq.Title.Text = title + ": normal Q-Q"
	qq.X.Label.Text = "Theoretical quantiles"
	qq.Y.Label.Text = "Standardized residuals"
	s, err := plotter.NewScatter(qqPoints(res))
	if err != nil {
		return errors.Wrap(err, "failed to build Q-Q plot")
	}
	ref := plotter.NewFunction(func(x float64) float64 { return x })
	ref.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	qq.Add(s, ref, plotter.NewGrid())

	return savePanels(path, hist, qq)
}

// qqPoints pairs the standard normal quantile at (i+0.5)/n with the i-th smallest
// standardized residual.
func qqPoints(res []float64) plotter.XYs {
	sorted := make([]float64, len(res))
	copy(sorted, res)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	if std > 0 {
		floats.AddConst(-mean, sorted)
		floats.Scale(1/std, sorted)
	}

	n := float64(len(sorted))
	pts := make(plotter.XYs, len(sorted))
	for i, v := range sorted {
		pts[i] = plotter.XY{X: distuv.UnitNormal.Quantile((float64(i) + 0.5) / n), Y: v}
	}
	return pts
}

// savePanels lays plots out in one row and writes the image to path.
func savePanels(path string, plots ...*plot.Plot) error {
	width := panelWidth * vg.Length(len(plots))

	var c vg.CanvasWriterTo
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		c = vgimg.PngCanvas{Canvas: vgimg.New(width, panelHeight)}
	case ".svg":
		c = vgsvg.New(width, panelHeight)
	case ".pdf":
		c = vgpdf.New(width, panelHeight)
	default:
		return errors.NewValueError("evaluation.savePanels", "unsupported image format "+filepath.Ext(path))
	}

	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	err := errors.SafeExecute("evaluation.savePanels", func() error {
		canvases := plot.Align([][]*plot.Plot{plots}, tiles, draw.New(c))
		for j, p := range plots {
			p.Draw(canvases[0][j])
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
