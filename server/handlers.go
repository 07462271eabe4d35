package server

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/report"
)

// selectionRequest is a selection as sent by clients, with calendar dates.
type selectionRequest struct {
	Region  string `json:"region"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Horizon int    `json:"horizon"`
}

func (req selectionRequest) resolve(session *dashboard.Session) (dashboard.Selection, error) {
	var sel dashboard.Selection
	sel.Region = strings.TrimSpace(req.Region)
	sel.Horizon = req.Horizon

	for _, d := range []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"start", req.Start, &sel.Start},
		{"end", req.End, &sel.End},
	} {
		if d.value == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, d.value)
		if err != nil {
			return sel, goerr.Wrap(err, "dates must be formatted as YYYY-MM-DD",
				goerr.V(d.name, d.value),
				goerr.T(dashboard.ErrTagInvalidSelection))
		}
		*d.dst = t
	}

	return session.Complete(sel), nil
}

func parseQuery(q url.Values) (selectionRequest, error) {
	req := selectionRequest{
		Region: q.Get("region"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}
	if h := q.Get("horizon"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil {
			return req, goerr.Wrap(err, "horizon must be a whole number of days",
				goerr.V("horizon", h),
				goerr.T(dashboard.ErrTagInvalidSelection))
		}
		req.Horizon = n
	}
	return req, nil
}

// render resolves the query selection and runs the pipeline. On failure
// it writes the error response and returns nil.
func (s *Server) render(w http.ResponseWriter, r *http.Request) *dashboard.View {
	req, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return nil
	}
	sel, err := req.resolve(s.session)
	if err != nil {
		writeError(w, r, err)
		return nil
	}

	view, err := dashboard.Render(r.Context(), s.session, sel)
	if err != nil {
		writeError(w, r, err)
		return nil
	}
	return view
}

type regionsResponse struct {
	Regions    []string            `json:"regions"`
	MinDate    string              `json:"min_date"`
	MaxDate    string              `json:"max_date"`
	MinHorizon int                 `json:"min_horizon"`
	MaxHorizon int                 `json:"max_horizon"`
	Default    dashboard.Selection `json:"default"`
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, regionsResponse{
		Regions:    s.session.Regions(),
		MinDate:    s.session.MinDate().Format(time.DateOnly),
		MaxDate:    s.session.MaxDate().Format(time.DateOnly),
		MinHorizon: dashboard.MinHorizon,
		MaxHorizon: dashboard.MaxHorizon,
		Default:    s.session.DefaultSelection(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if view := s.render(w, r); view != nil {
		writeJSON(w, r, http.StatusOK, view)
	}
}

func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	view := s.render(w, r)
	if view == nil {
		return
	}
	p, err := report.HistoryChart(view)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeBody(w, r, "image/png", "", func(buf io.Writer) error {
		return report.WriteChart(buf, p, "png")
	})
}

func (s *Server) handleAnomalyChart(w http.ResponseWriter, r *http.Request) {
	view := s.render(w, r)
	if view == nil {
		return
	}
	p, err := report.AnomalyChart(view)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeBody(w, r, "image/png", "", func(buf io.Writer) error {
		return report.WriteChart(buf, p, "png")
	})
}

func (s *Server) handleForecastCSV(w http.ResponseWriter, r *http.Request) {
	view := s.render(w, r)
	if view == nil {
		return
	}
	s.writeBody(w, r, "text/csv; charset=utf-8", report.CSVFile, func(buf io.Writer) error {
		return report.WriteForecastCSV(buf, view)
	})
}

func (s *Server) handleForecastXLSX(w http.ResponseWriter, r *http.Request) {
	view := s.render(w, r)
	if view == nil {
		return
	}
	s.writeBody(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.XLSXFile, func(buf io.Writer) error {
		return report.WriteForecastXLSX(buf, view)
	})
}

// writeBody buffers the encoded body so an encoding failure can still
// produce an error response.
func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, contentType, filename string, encode func(io.Writer) error) {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write response body", "error", err)
	}
}
