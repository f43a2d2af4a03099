package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/buildinfo"
	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/graph"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	data, err := workflow.Marshal(workflow.Example(), workflow.FormatJSON, workflow.ExportOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// ValidateResponse reports whether a posted document is well formed.
type ValidateResponse struct {
	Valid bool           `json:"valid"`
	Tasks int            `json:"tasks,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := workflow.Parse(body)
	if err != nil {
		if !errors.IsValidation(err) {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ValidateResponse{
			Error: &ErrorResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)},
		})
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Tasks: len(doc.Tasks)})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	_, g, err := s.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromDAG(g))
}

// LayoutResponse is the result of a layout request.
type LayoutResponse struct {
	Document json.RawMessage `json:"document"`
	Graph    graph.Graph     `json:"graph"`
	Levels   map[string]int  `json:"levels"`
	Analysis layout.Analysis `json:"analysis"`
	CacheHit bool            `json:"cache_hit"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, _, err := s.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Format = string(workflow.FormatJSON)
	opts.IncludePositions = true

	res, err := s.runner.Layout(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Document: res.Output,
		Graph:    graph.FromDAG(res.Graph),
		Levels:   res.Levels.ByNode,
		Analysis: res.Analysis,
		CacheHit: res.CacheHit,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, _, err := s.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, analysis, err := s.runner.Analyze(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// SnapRequest asks where a node dropped at (X, Y) should land.
type SnapRequest struct {
	Document json.RawMessage      `json:"document"`
	Node     string               `json:"node"`
	X        float64              `json:"x"`
	Y        float64              `json:"y"`
	Options  *layout.AlignOptions `json:"options,omitempty"`
}

func (s *Server) handleSnap(w http.ResponseWriter, r *http.Request) {
	var req SnapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Document) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "document is required"))
		return
	}
	doc, err := workflow.Parse(req.Document)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := dag.FromDocument(doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dragged, ok := g.Node(req.Node)
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", req.Node))
		return
	}
	dragged.X, dragged.Y = req.X, req.Y

	opts := s.align
	if req.Options != nil {
		opts = *req.Options
	}
	writeJSON(w, http.StatusOK, layout.Snap(dragged, g.Nodes(), opts))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, g, err := s.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lo := opts.LayoutOptions()
	eo := layout.DefaultEdgeOptions()
	eo.Direction = lo.Direction
	eo.NodeWidth, eo.NodeHeight = lo.NodeWidth, lo.NodeHeight
	if v := r.URL.Query().Get("enhance"); v != "" {
		enhance, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid enhance value %q", v))
			return
		}
		eo.Enhance = enhance
	}

	routes := layout.RouteEdges(g, eo)
	if routes == nil {
		routes = []layout.RoutedEdge{}
	}
	writeJSON(w, http.StatusOK, routes)
}

// layoutOptions applies the query parameters direction, grid,
// break_cycles, keep_positions and refresh to the server defaults.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.layout
	q := r.URL.Query()
	if v := q.Get("direction"); v != "" {
		dir, err := layout.ParseDirection(v)
		if err != nil {
			return opts, err
		}
		opts.Direction = string(dir)
	}
	if v := q.Get("grid"); v != "" {
		grid, err := strconv.ParseFloat(v, 64)
		if err != nil || grid < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid grid size %q", v)
		}
		opts.Grid = grid
	}
	for name, dst := range map[string]*bool{
		"break_cycles":   &opts.BreakCycles,
		"keep_positions": &opts.KeepPositions,
		"refresh":        &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s value %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

func (s *Server) load(r *http.Request) (*workflow.Document, *dag.DAG, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, nil, err
	}
	return s.runner.Load(r.Context(), body)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}

func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid JSON")
	}
	return nil
}
