package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"
	"github.com/sartorproj/epicast/dashboard"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/dataset/datasettest"
	"github.com/sartorproj/epicast/metrics"
	"github.com/sartorproj/epicast/server"
)

type viewResponse struct {
	SessionID string `json:"session_id"`
	Selection struct {
		Region  string `json:"region"`
		Horizon int    `json:"horizon"`
	} `json:"selection"`
	Stats struct {
		Confirmed int64  `json:"confirmed"`
		Deaths    *int64 `json:"deaths"`
	} `json:"stats"`
	History  []json.RawMessage `json:"history"`
	Forecast []json.RawMessage `json:"forecast"`
	Table    []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	} `json:"table"`
	Anomalies []json.RawMessage `json:"anomalies"`
}

func newSession(t *testing.T, opts ...dashboard.Option) *dashboard.Session {
	t.Helper()
	read := func(csv, metric string) *dataset.WideTable {
		table, err := dataset.ReadCSV(strings.NewReader(csv), metric)
		gt.NoError(t, err).Required()
		return table
	}
	confirmed := read(datasettest.CSV(datasettest.Start, 60,
		datasettest.Row{Region: "India", Value: datasettest.Linear(100, 10)},
		datasettest.Row{Region: "Flatland", Value: datasettest.Constant(5)},
	), "confirmed")
	deaths := read(datasettest.CSV(datasettest.Start, 60,
		datasettest.Row{Region: "India", Value: datasettest.Linear(0, 1)},
	), "deaths")

	session, err := dashboard.NewSession(confirmed, deaths, opts...)
	gt.NoError(t, err).Required()
	return session
}

func newTestServer(t *testing.T, opts ...server.Option) (*httptest.Server, *dashboard.Session) {
	t.Helper()
	rec := metrics.NewPrometheusRecorder()
	session := newSession(t, dashboard.WithRecorder(rec))
	opts = append([]server.Option{server.WithMetricsHandler(rec.Handler())}, opts...)
	srv := server.New(context.Background(), ":0", session, opts...)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, session
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	gt.NoError(t, err).Required()
	return resp, body
}

func TestHealth(t *testing.T) {
	ts, session := newTestServer(t)

	resp, body := get(t, ts.URL+"/health")
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var health map[string]string
	gt.NoError(t, json.Unmarshal(body, &health)).Required()
	gt.Equal(t, health["status"], "healthy")
	gt.Equal(t, health["session"], session.ID)
}

func TestRegions(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/regions")
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var meta struct {
		Regions    []string `json:"regions"`
		MinDate    string   `json:"min_date"`
		MaxDate    string   `json:"max_date"`
		MaxHorizon int      `json:"max_horizon"`
		Default    struct {
			Region string `json:"region"`
		} `json:"default"`
	}
	gt.NoError(t, json.Unmarshal(body, &meta)).Required()
	gt.Equal(t, meta.Regions, []string{"Flatland", "India"})
	gt.Equal(t, meta.MinDate, "2020-01-22")
	gt.Equal(t, meta.MaxDate, "2020-03-21")
	gt.Equal(t, meta.MaxHorizon, 60)
	gt.Equal(t, meta.Default.Region, "India")
}

func TestView(t *testing.T) {
	ts, session := newTestServer(t)

	t.Run("defaults", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/view")
		gt.Equal(t, resp.StatusCode, http.StatusOK)

		var view viewResponse
		gt.NoError(t, json.Unmarshal(body, &view)).Required()
		gt.Equal(t, view.SessionID, session.ID)
		gt.Equal(t, view.Selection.Region, "India")
		gt.Equal(t, len(view.History), 60)
		gt.Equal(t, len(view.Forecast), 30)
		gt.Equal(t, view.Stats.Confirmed, int64(100+10*59))
		gt.Equal(t, *view.Stats.Deaths, int64(59))
		gt.Equal(t, view.Table[0].Count, int64(100+10*60))
		gt.Equal(t, len(view.Anomalies), 0)
	})

	t.Run("explicit selection", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/view?region=India&start=2020-02-01&end=2020-03-01&horizon=7")
		gt.Equal(t, resp.StatusCode, http.StatusOK)

		var view viewResponse
		gt.NoError(t, json.Unmarshal(body, &view)).Required()
		gt.Equal(t, len(view.History), 30)
		gt.Equal(t, len(view.Forecast), 7)
		gt.S(t, view.Table[0].Date).Contains("2020-03-02")
	})
}

func TestViewErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	testCases := []struct {
		name    string
		query   string
		status  int
		message string
	}{
		{"unknown region", "region=Atlantis", http.StatusUnprocessableEntity, "Invalid selection: unknown region."},
		{"horizon not a number", "horizon=soon", http.StatusUnprocessableEntity, "Invalid selection"},
		{"horizon out of range", "horizon=90", http.StatusUnprocessableEntity, "horizon out of range"},
		{"bad date", "start=22/01/2020", http.StatusUnprocessableEntity, "Invalid selection"},
		{"date outside data", "start=2019-12-01", http.StatusUnprocessableEntity, "outside the available data"},
		{"flat series", "region=Flatland", http.StatusUnprocessableEntity, "forecast model"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/view?"+tc.query)
			gt.Equal(t, resp.StatusCode, tc.status)

			var payload map[string]string
			gt.NoError(t, json.Unmarshal(body, &payload)).Required()
			gt.S(t, payload["error"]).Contains(tc.message)
		})
	}
}

func TestCharts(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/api/chart/history.png", "/api/chart/anomalies.png"} {
		resp, body := get(t, ts.URL+path+"?horizon=14")
		gt.Equal(t, resp.StatusCode, http.StatusOK)
		gt.Equal(t, resp.Header.Get("Content-Type"), "image/png")
		gt.True(t, strings.HasPrefix(string(body), "\x89PNG"))
	}

	resp, _ := get(t, ts.URL+"/api/chart/history.png?region=Flatland")
	gt.Equal(t, resp.StatusCode, http.StatusUnprocessableEntity)
}

func TestForecastDownloads(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/forecast.csv?horizon=7")
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.S(t, resp.Header.Get("Content-Disposition")).Contains("forecast.csv")
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	gt.Equal(t, len(lines), 8)
	gt.Equal(t, lines[0], "Date,Forecasted Cases")
	gt.Equal(t, lines[1], "2020-03-22,700")

	resp, body = get(t, ts.URL+"/api/forecast.xlsx?horizon=7")
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.S(t, resp.Header.Get("Content-Type")).Contains("spreadsheetml")
	gt.True(t, strings.HasPrefix(string(body), "PK"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	get(t, ts.URL+"/api/view")
	resp, body := get(t, ts.URL+"/metrics")
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.S(t, string(body)).Contains(`epicast_pipeline_runs_total{stage="render",status="success"} 1`)
}

func TestIndex(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/")
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.S(t, resp.Header.Get("Content-Type")).Contains("text/html")
	gt.S(t, string(body)).Contains("Dashboard Controls")
}

func TestWebSocket(t *testing.T) {
	ts, _ := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	gt.NoError(t, err).Required()
	defer conn.Close()

	type frame struct {
		Type  string        `json:"type"`
		View  *viewResponse `json:"view"`
		Error string        `json:"error"`
	}

	gt.NoError(t, conn.WriteJSON(map[string]any{"region": "India", "horizon": 7})).Required()
	var msg frame
	gt.NoError(t, conn.ReadJSON(&msg)).Required()
	gt.Equal(t, msg.Type, "view")
	if msg.View == nil {
		t.Fatal("view frame without view")
	}
	gt.Equal(t, len(msg.View.Forecast), 7)

	gt.NoError(t, conn.WriteJSON(map[string]any{"region": "Atlantis"})).Required()
	msg = frame{}
	gt.NoError(t, conn.ReadJSON(&msg)).Required()
	gt.Equal(t, msg.Type, "error")
	gt.S(t, msg.Error).Contains("unknown region")

	gt.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json"))).Required()
	msg = frame{}
	gt.NoError(t, conn.ReadJSON(&msg)).Required()
	gt.Equal(t, msg.Type, "error")
	gt.S(t, msg.Error).Contains("Invalid selection")

	// the connection stays usable after errors
	gt.NoError(t, conn.WriteJSON(map[string]any{"region": "India", "start": "2020-02-01"})).Required()
	msg = frame{}
	gt.NoError(t, conn.ReadJSON(&msg)).Required()
	gt.Equal(t, msg.Type, "view")
	gt.Equal(t, len(msg.View.History), 50)
}
