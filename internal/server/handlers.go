package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/netdiag/pkg/errors"
	netio "github.com/matzehuels/netdiag/pkg/io"
	"github.com/matzehuels/netdiag/pkg/pipeline"
	"github.com/matzehuels/netdiag/pkg/render"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	"yaml":           "application/yaml",
	"json":           "application/json",
	render.FormatPNG: "image/png",
	render.FormatSVG: "image/svg+xml",
	render.FormatPDF: "application/pdf",
	render.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	render.FormatD2:  "text/plain; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// readTable reads the uploaded table from the request body.
func (s *Server) readTable(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "read request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInput, "request body is empty")
	}
	return data, nil
}

// requestOptions builds pipeline options from the query string.
func requestOptions(r *http.Request, data []byte) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Input:     "request",
		Data:      data,
		Delimiter: q.Get("delimiter"),
		Engine:    q.Get("engine"),
		Renderer:  q.Get("renderer"),
		Name:      q.Get("name"),
	}
	if v := q.Get("detailed"); v != "" {
		detailed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidFormat, "invalid detailed value %q", v)
		}
		opts.Detailed = detailed
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidFormat, "invalid scale value %q", v)
		}
		opts.Scale = scale
	}
	return opts, nil
}

// handleTopology returns the topology document for an uploaded table.
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}
	if format != "yaml" && format != "json" {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be yaml or json)", format))
		return
	}

	data, err := s.readTable(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := requestOptions(r, data)
	if err == nil {
		err = opts.ValidateAndSetDefaults()
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	t, err := s.runner.Parse(r.Context(), data, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == "json" {
		err = netio.WriteJSON(t, opts.Name, &buf)
	} else {
		err = netio.WriteYAML(t, opts.Name, &buf)
	}
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode topology"))
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(buf.Bytes())
}

// handleDiagram renders an uploaded table as a diagram.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	data, err := s.readTable(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := requestOptions(r, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatPNG
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Netdiag-Devices", strconv.Itoa(result.Stats.Devices))
	w.Header().Set("X-Netdiag-Networks", strconv.Itoa(result.Stats.Networks))
	w.Header().Set("X-Netdiag-Input-Hash", result.InputHash)
	w.Write(result.Artifacts[format])
}
