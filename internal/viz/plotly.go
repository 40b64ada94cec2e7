// ABOUTME: Plotly figure builder and standalone HTML page for a projection.
// ABOUTME: scatter for 2D, scatter3d for 3D, with padded axis ranges and hover text.
package viz

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/2389-research/asksee/internal/projector"
	"github.com/2389-research/asksee/internal/session"
)

// PointColor is the marker colour used by every renderer.
const PointColor = "#8bb0ff"

// Background is the plot background colour.
const Background = "#0e1540"

// Marker styles a trace's points.
type Marker struct {
	Size    int     `json:"size"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
}

// Trace is a single plotly trace.
type Trace struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Z      []float64 `json:"z,omitempty"`
	Text   []string  `json:"text"`
	Mode   string    `json:"mode"`
	Type   string    `json:"type"`
	Marker Marker    `json:"marker"`
	Name   string    `json:"name"`
}

// Axis is a plotly axis layout.
type Axis struct {
	Title         string    `json:"title"`
	Range         []float64 `json:"range,omitempty"`
	Color         string    `json:"color,omitempty"`
	TickColor     string    `json:"tickcolor,omitempty"`
	ZeroLineColor string    `json:"zerolinecolor,omitempty"`
	GridColor     string    `json:"gridcolor,omitempty"`
}

// Scene is the 3D layout.
type Scene struct {
	XAxis Axis `json:"xaxis"`
	YAxis Axis `json:"yaxis"`
	ZAxis Axis `json:"zaxis"`
}

// Layout is the subset of the plotly layout we set.
type Layout struct {
	Title        string            `json:"title"`
	Margin       map[string]int    `json:"margin"`
	PaperBGColor string            `json:"paper_bgcolor"`
	PlotBGColor  string            `json:"plot_bgcolor"`
	Font         map[string]string `json:"font"`
	XAxis        *Axis             `json:"xaxis,omitempty"`
	YAxis        *Axis             `json:"yaxis,omitempty"`
	Scene        *Scene            `json:"scene,omitempty"`
}

// Figure is a complete plotly figure.
type Figure struct {
	Data   []Trace        `json:"data"`
	Layout Layout         `json:"layout"`
	Config map[string]any `json:"config"`
}

// NewFigure builds the plotly figure for a projection.
func NewFigure(p *projector.Projection) (*Figure, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}

	n := p.Len()
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}

	fig := &Figure{
		Layout: Layout{
			Title:        fmt.Sprintf("Embeddings (PCA) — %d points", p.Total),
			Margin:       map[string]int{"l": 10, "r": 10, "t": 30, "b": 30},
			PaperBGColor: "rgba(0,0,0,0)",
			PlotBGColor:  Background,
			Font:         map[string]string{"color": "#cfd6ff"},
		},
		Config: map[string]any{"responsive": true, "displaylogo": false},
	}

	if p.Dims == 3 {
		zs := make([]float64, n)
		for i, pt := range p.Points {
			zs[i] = pt.Z
		}
		fig.Data = []Trace{{
			X: xs, Y: ys, Z: zs,
			Text:   p.Hover,
			Mode:   "markers",
			Type:   "scatter3d",
			Marker: Marker{Size: 4, Opacity: 0.85, Color: PointColor},
			Name:   "embeddings",
		}}
		fig.Layout.Scene = &Scene{
			XAxis: Axis{Title: "PC1", Range: []float64{p.X.Min, p.X.Max}},
			YAxis: Axis{Title: "PC2", Range: []float64{p.Y.Min, p.Y.Max}},
			ZAxis: Axis{Title: "PC3", Range: []float64{p.Z.Min, p.Z.Max}},
		}
		return fig, nil
	}

	fig.Data = []Trace{{
		X: xs, Y: ys,
		Text:   p.Hover,
		Mode:   "markers",
		Type:   "scatter",
		Marker: Marker{Size: 6, Opacity: 0.9, Color: PointColor},
		Name:   "embeddings",
	}}
	fig.Layout.XAxis = axis2D("PC1", p.X)
	fig.Layout.YAxis = axis2D("PC2", p.Y)
	return fig, nil
}

func axis2D(title string, r projector.Range) *Axis {
	return &Axis{
		Title:         title,
		Range:         []float64{r.Min, r.Max},
		Color:         "#cfd6ff",
		TickColor:     "#cfd6ff",
		ZeroLineColor: "#445",
		GridColor:     "#223",
	}
}

// PageData feeds the HTML page template. When Figure is empty the page
// fetches it from Endpoint instead.
type PageData struct {
	Title    string
	Figure   template.JS
	Endpoint string
	Dims     int
	Limit    int
	Limits   []int

	// Notice and Failed are filled in by WritePage.
	Notice string
	Failed string
}

// WriteHTML writes a self-contained page that renders fig with plotly and
// draws a canvas scatter if plotly throws.
func WriteHTML(w io.Writer, fig *Figure) error {
	data, err := json.Marshal(fig)
	if err != nil {
		return fmt.Errorf("failed to marshal figure: %w", err)
	}
	return WritePage(w, PageData{Title: "Ask & See — Embeddings", Figure: template.JS(data)})
}

// WritePage renders the projector page.
func WritePage(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Ask & See — Embeddings"
	}
	data.Notice = FallbackNotice
	data.Failed = session.EmbeddingsFailed
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
body { background: #0b1030; color: #cfd6ff; font-family: sans-serif; margin: 24px; }
#controls { display: flex; gap: 8px; align-items: center; margin-bottom: 8px; }
#notice { color: #ffdf8b; margin-bottom: 6px; }
#error { color: crimson; }
#plot { width: 100%; height: 400px; }
canvas { width: 100%; height: 360px; display: none; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Endpoint}}
<div id="controls">
  <span>View:</span>
  <button data-dims="2">2D</button>
  <button data-dims="3">3D</button>
  <span>Limit:</span>
  <select id="limit">{{range .Limits}}<option value="{{.}}"{{if eq . $.Limit}} selected{{end}}>{{.}}</option>{{end}}</select>
  <button id="refresh">Refresh</button>
  <span id="count" style="margin-left:auto"></span>
</div>
{{end}}
<div id="notice"></div>
<div id="error"></div>
<div id="plot"></div>
<canvas id="fallback"></canvas>
<script>
(function () {
  var endpoint = {{.Endpoint}};
  var dims = {{.Dims}} || 2;
  var seq = 0;

  function drawCanvas(fig) {
    var c = document.getElementById('fallback');
    c.style.display = 'block';
    var t = fig.data[0];
    var layout = fig.layout.scene || fig.layout;
    var xr = layout.xaxis.range, yr = layout.yaxis.range;
    var w = c.clientWidth || 800, h = c.clientHeight || 360;
    c.width = w; c.height = h;
    var ctx = c.getContext('2d');
    ctx.fillStyle = '#0e1540';
    ctx.fillRect(0, 0, w, h);
    ctx.fillStyle = '#8bb0ff';
    for (var i = 0; i < t.x.length; i++) {
      var x = (t.x[i] - xr[0]) / ((xr[1] - xr[0]) || 1) * (w - 20) + 10;
      var y = h - ((t.y[i] - yr[0]) / ((yr[1] - yr[0]) || 1) * (h - 20) + 10);
      ctx.beginPath();
      ctx.arc(x, y, 3, 0, Math.PI * 2);
      ctx.fill();
    }
  }

  function fallback(fig) {
    document.getElementById('plot').style.display = 'none';
    document.getElementById('notice').textContent = {{.Notice}};
    drawCanvas(fig);
  }

  function clearPlot() {
    try { Plotly.purge('plot'); } catch (e) {}
    document.getElementById('fallback').style.display = 'none';
    document.getElementById('notice').textContent = '';
    var count = document.getElementById('count');
    if (count) { count.textContent = ''; }
  }

  function render(fig) {
    document.getElementById('notice').textContent = '';
    document.getElementById('fallback').style.display = 'none';
    document.getElementById('plot').style.display = 'block';
    try {
      // newPlot rejects its promise on async failures such as a missing WebGL context.
      Promise.resolve(Plotly.newPlot('plot', fig.data, fig.layout, fig.config)).catch(function () {
        fallback(fig);
      });
    } catch (e) {
      fallback(fig);
    }
  }

  function load() {
    var mine = ++seq;
    var limit = document.getElementById('limit').value;
    document.getElementById('error').textContent = 'Loading embeddings...';
    fetch(endpoint + '?dims=' + dims + '&limit=' + limit).then(function (res) {
      return res.json().then(function (body) { return { ok: res.ok, body: body }; });
    }).then(function (r) {
      if (mine !== seq) { return; }
      document.getElementById('error').textContent = '';
      if (!r.ok) {
        clearPlot();
        document.getElementById('error').textContent = r.body.error || {{.Failed}};
        return;
      }
      document.getElementById('count').textContent = 'points: ' + r.body.valid;
      render(r.body.figure);
    }).catch(function (e) {
      if (mine !== seq) { return; }
      clearPlot();
      document.getElementById('error').textContent = e.message || {{.Failed}};
    });
  }

  {{if .Figure}}
  render({{.Figure}});
  {{else}}
  document.querySelectorAll('button[data-dims]').forEach(function (b) {
    b.addEventListener('click', function () { dims = parseInt(b.dataset.dims, 10); load(); });
  });
  document.getElementById('limit').addEventListener('change', load);
  document.getElementById('refresh').addEventListener('click', load);
  load();
  {{end}}
})();
</script>
</body>
</html>
`))
