package evaluation

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// PlotROC renders the report's ROC curve against the chance diagonal and
// writes it as an image to path; the format follows the extension.
func PlotROC(r *Report, path string) error {
	if r == nil || len(r.FPR) == 0 {
		return errors.NewValueError("PlotROC", "report has no ROC curve")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC curve (AUC = %.3f)", r.AUC)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(r.FPR))
	for i := range r.FPR {
		pts[i].X = r.FPR[i]
		pts[i].Y = r.TPR[i]
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building ROC line")
	}
	curve.LineStyle.Width = vg.Points(2)

	chance := plotter.NewFunction(func(x float64) float64 { return x })
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, chance)
	p.Legend.Add("model", curve)
	p.Legend.Add("chance", chance)
	p.Legend.Top = false
	p.Legend.Left = false

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving ROC plot to %s", path)
	}
	return nil
}
