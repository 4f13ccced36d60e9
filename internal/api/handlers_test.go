package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/calvinwijaya/blackjack-sim/internal/game"
	"github.com/calvinwijaya/blackjack-sim/internal/store"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://frontend.test"

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	st := store.NewMemoryStore()
	h := NewHandlers(st, game.NewBasicStrategy(), hub, 1000)
	srv := httptest.NewServer(NewRouter(h, testOrigin))
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestSimulate(t *testing.T) {
	srv, st := newTestServer(t)

	var report game.Report
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate",
		map[string]interface{}{"rounds": 50, "seed": 7}, &report)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, "t1", report.TableID)
	assert.Equal(t, 50, report.Statistics.Rounds)
	s := report.Statistics
	assert.Equal(t, s.Rounds, s.Wins+s.Losses+s.Pushes)
	assert.Empty(t, report.Rounds)
	assert.Equal(t, 6, report.Config.Decks)

	stored, err := st.GetReport(report.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Rounds, 50)

	var full game.Report
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/simulation/"+report.ID, nil, &full)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, full.Rounds, 50)
	assert.Equal(t, report.Statistics, full.Statistics)
}

func TestSimulateCapsStoredRounds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	st := store.NewMemoryStore()
	h := NewHandlers(st, game.NewBasicStrategy(), hub, 1000)
	h.keepRounds = 10
	srv := httptest.NewServer(NewRouter(h, testOrigin))
	defer srv.Close()

	var report game.Report
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate",
		map[string]interface{}{"rounds": 30, "includeRounds": true}, &report)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 30, report.Statistics.Rounds)
	assert.Len(t, report.Rounds, 10)
	assert.True(t, report.Truncated)

	stored, err := st.GetReport(report.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Rounds, 10)
}

func TestHubWithoutRunDoesNotBlock(t *testing.T) {
	st := store.NewMemoryStore()
	h := NewHandlers(st, game.NewBasicStrategy(), NewHub(), 1000)
	srv := httptest.NewServer(NewRouter(h, testOrigin))
	defer srv.Close()

	done := make(chan *http.Response, 1)
	go func() {
		done <- doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", map[string]int{"rounds": 3}, nil)
	}()

	select {
	case resp := <-done:
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	case <-time.After(5 * time.Second):
		t.Fatal("simulate blocked on a hub that is not running")
	}
}

func TestSimulateEmptyBodyUsesDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/table/t1/simulate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report game.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 100, report.Statistics.Rounds)
}

func TestSimulateIsReproducible(t *testing.T) {
	srv, _ := newTestServer(t)
	body := map[string]interface{}{"rounds": 80, "seed": 21, "decks": 2, "double": "cardOnly"}

	var a, b game.Report
	doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", body, &a)
	doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", body, &b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Statistics, b.Statistics)
	assert.Equal(t, game.DoubleCardOnly, a.Config.Double)
}

func TestSimulateValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"too many rounds", map[string]interface{}{"rounds": 1001}},
		{"negative rounds", map[string]interface{}{"rounds": -1}},
		{"too many decks", map[string]interface{}{"decks": 9}},
		{"threshold out of range", map[string]interface{}{"threshold": 1.5}},
		{"negative bet", map[string]interface{}{"bet": -5}},
		{"unknown double policy", map[string]interface{}{"double": "triple"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", tt.body, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTablesAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	var first, second, other game.Report
	doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", map[string]int{"rounds": 5}, &first)
	doJSON(t, http.MethodPost, srv.URL+"/api/table/t1/simulate", map[string]int{"rounds": 7}, &second)
	doJSON(t, http.MethodPost, srv.URL+"/api/table/t2/simulate", map[string]int{"rounds": 3}, &other)

	var tableReports []game.Report
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/table/t1/simulations", nil, &tableReports)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, tableReports, 2)
	assert.Empty(t, tableReports[0].Rounds)

	var tables []tableInfo
	doJSON(t, http.MethodGet, srv.URL+"/api/table/list", nil, &tables)
	require.Len(t, tables, 2)
	byID := map[string]tableInfo{}
	for _, info := range tables {
		byID[info.ID] = info
	}
	assert.Equal(t, 2, byID["t1"].Simulations)
	assert.Equal(t, 12, byID["t1"].Rounds)
	assert.Equal(t, 3, byID["t2"].Rounds)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/simulation/"+first.ID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/simulation/"+first.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/simulation/"+first.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetStrategy(t *testing.T) {
	srv, _ := newTestServer(t)

	var table map[string][]game.Rule
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/strategy", nil, &table)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, table["hard"], 60)
	assert.Len(t, table["soft"], 30)
	assert.Len(t, table["pairs"], 40)
}

func TestDecide(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		hand   []string
		upCard string
		action game.Action
		total  int
		soft   bool
	}{
		{[]string{"8", "8"}, "6", game.Split, 16, false},
		{[]string{"10", "K"}, "6", game.Stand, 20, false},
		{[]string{"A", "7"}, "5", game.Double, 18, true},
		{[]string{"A", "7"}, "9", game.Hit, 18, true},
		{[]string{"10h", "6d"}, "A", game.Hit, 16, false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.hand, ",")+"/"+tt.upCard, func(t *testing.T) {
			var out struct {
				Action game.Action `json:"action"`
				Total  int         `json:"total"`
				Soft   bool        `json:"soft"`
			}
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/strategy/decide",
				map[string]interface{}{"hand": tt.hand, "dealerUpCard": tt.upCard}, &out)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.action, out.Action)
			assert.Equal(t, tt.total, out.Total)
			assert.Equal(t, tt.soft, out.Soft)
		})
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/strategy/decide",
		map[string]interface{}{"hand": []string{"X"}, "dealerUpCard": "6"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/strategy/decide",
		map[string]interface{}{"hand": []string{}, "dealerUpCard": "6"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/table/t1/simulate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketStreamsRounds(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?tableId=live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the welcome is written only once the client is subscribed
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, MessageWelcome, welcome.Type)

	var report game.Report
	doJSON(t, http.MethodPost, srv.URL+"/api/table/live/simulate", map[string]int{"rounds": 4}, &report)

	// table events, in order, up to and including simulationCompleted;
	// global tablesUpdated events may share a frame and are set aside
	var msgs []Message
	var tablesUpdated int
	completed := false
	for !completed {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var msg Message
			require.NoError(t, json.Unmarshal(line, &msg))
			switch {
			case msg.Type == MessageTablesUpdated:
				tablesUpdated++
			case !completed:
				msgs = append(msgs, msg)
				completed = msg.Type == MessageSimulationCompleted
			}
		}
	}

	require.Len(t, msgs, 5)
	for _, msg := range msgs[:4] {
		assert.Equal(t, MessageRoundCompleted, msg.Type)
		assert.Equal(t, report.ID, msg.ReportID)
		assert.Equal(t, "live", msg.TableID)
	}
	assert.Equal(t, MessageSimulationCompleted, msgs[4].Type)
	assert.Equal(t, report.ID, msgs[4].ReportID)
	assert.LessOrEqual(t, tablesUpdated, 1)
}

func TestWebSocketTablesUpdated(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?tableId=watcher"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))

	// a simulation at another table reaches every client as tablesUpdated only
	var report game.Report
	doJSON(t, http.MethodPost, srv.URL+"/api/table/other/simulate", map[string]int{"rounds": 2}, &report)

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(bytes.Split(data, []byte{'\n'})[0], &msg))
	assert.Equal(t, MessageTablesUpdated, msg.Type)
	assert.Equal(t, "other", msg.TableID)
}

func TestWebSocketRequiresTable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
