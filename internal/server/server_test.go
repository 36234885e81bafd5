package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/danmuck/ubxwire/internal/protocol/schema"
	"github.com/danmuck/ubxwire/internal/protocol/ubx"
	"github.com/danmuck/ubxwire/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodePacket(t *testing.T, body any) schema.Packet {
	t.Helper()
	reg, err := ubx.NewRegistry(ubx.Proto23)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	key, payload, err := reg.Encode(body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pkt, err := reg.Decode(key.Class, key.ID, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return pkt
}

func serve(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	var body map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return rr, body
}

func TestStoreKeepsLatestPerMessage(t *testing.T) {
	testlog.Start(t)
	store := NewStore()
	store.Record(decodePacket(t, &ubx.NavEOE{ITOW: 1}))
	store.Record(decodePacket(t, &ubx.NavEOE{ITOW: 2}))
	store.Record(schema.Packet{Class: 0xf0, ID: 0x01, Payload: []byte("x")})
	store.Record(schema.Packet{Class: 0x01, ID: 0x02, Name: "NAV-POSLLH"})

	if store.Len() != 2 {
		t.Fatalf("expected two entries, got %+v", store.Entries())
	}
	e, ok := store.Latest("nav-eoe")
	if !ok || e.Count != 2 || e.Packet.Body.(*ubx.NavEOE).ITOW != 2 {
		t.Fatalf("unexpected entry %+v", e)
	}
	entries := store.Entries()
	if entries[0].Name != "0xf0-0x01" || entries[1].Name != "NAV-EOE" {
		t.Fatalf("entries not sorted: %+v", entries)
	}
}

func TestStatusRoutes(t *testing.T) {
	testlog.Start(t)
	stats := frame.Stats{}
	store := NewStore()
	s := New("ubxdump-test", ":0", nil, store, func() frame.Stats { return stats })

	rr, body := serve(t, s, http.MethodGet, "/health")
	if rr.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "ubxdump-test" {
		t.Fatalf("health: %d %v", rr.Code, body)
	}

	rr, body = serve(t, s, http.MethodGet, "/ready")
	if rr.Code != http.StatusServiceUnavailable || body["ready"] != false {
		t.Fatalf("ready before any frame: %d %v", rr.Code, body)
	}

	stats = frame.Stats{Accepted: 3, Checksum: 1, Discarded: 7}
	store.Record(decodePacket(t, &ubx.AckAck{ClsID: ubx.ClassCFG, MsgID: ubx.IDCfgRate}))

	rr, _ = serve(t, s, http.MethodGet, "/ready")
	if rr.Code != http.StatusOK {
		t.Fatalf("ready after frames: %d", rr.Code)
	}

	rr, body = serve(t, s, http.MethodGet, "/stats")
	if rr.Code != http.StatusOK || body["accepted"] != float64(3) || body["checksum"] != float64(1) || body["messages"] != float64(1) {
		t.Fatalf("stats: %d %v", rr.Code, body)
	}

	rr, body = serve(t, s, http.MethodGet, "/packets/ACK-ACK")
	if rr.Code != http.StatusOK {
		t.Fatalf("packet: %d %s", rr.Code, rr.Body.String())
	}
	pkt, _ := body["packet"].(map[string]any)
	fields, _ := pkt["fields"].(map[string]any)
	if body["count"] != float64(1) || pkt["name"] != "ACK-ACK" || fields["ClsID"] != float64(ubx.ClassCFG) {
		t.Fatalf("packet body: %v", body)
	}

	rr, _ = serve(t, s, http.MethodGet, "/packets/NAV-PVT")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unseen message, got %d", rr.Code)
	}

	rr, body = serve(t, s, http.MethodGet, "/packets")
	if list, _ := body["packets"].([]any); rr.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("packets: %d %v", rr.Code, body)
	}

	rr, _ = serve(t, s, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ubxwire_http_requests_total") {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestPollRoute(t *testing.T) {
	testlog.Start(t)
	s := New("ubxdump-poll", ":0", []string{"http://example.test"}, nil, nil)

	rr, _ := serve(t, s, http.MethodPost, "/poll/MON-VER")
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without a poller, got %d", rr.Code)
	}

	var polled []string
	s.SetPoller(PollerFunc(func(name string) error {
		if name == "NAV-NOPE" {
			return ErrUnknownMessage
		}
		if name == "CFG-RST" {
			return errors.New("port closed")
		}
		polled = append(polled, name)
		return nil
	}))

	cases := map[string]int{
		"MON-VER":  http.StatusOK,
		"NAV-NOPE": http.StatusNotFound,
		"CFG-RST":  http.StatusInternalServerError,
	}
	for name, want := range cases {
		rr, _ := serve(t, s, http.MethodPost, "/poll/"+name)
		if rr.Code != want {
			t.Fatalf("poll %s: got %d want %d", name, rr.Code, want)
		}
	}
	if len(polled) != 1 || polled[0] != "MON-VER" {
		t.Fatalf("polled %v", polled)
	}
}
