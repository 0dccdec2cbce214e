package frontend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/scam-detector/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHTTPFrontend(detector *fakeDetector, logger *zap.Logger) http.Handler {
	cfg := config.ServerConfig{
		MaxRequestBytes: 1 << 16,
		CORSOrigins:     []string{"http://localhost:5173"},
	}
	return NewHTTPFrontend(detector, cfg, logger).Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	detector := &fakeDetector{record: fraudRecord()}
	h := newTestHTTPFrontend(detector, zap.NewNop())

	resp := postJSON(t, h, "/analyze", `{"message":"Mãe, me manda um Pix","user_id":"u-42","device_info":{"os":"android","version":14}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var got analyzeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if got.AnalysisID != "a1b2" || !got.IsFraud || got.Confidence != 0.8 || got.RiskScore != 8 {
		t.Fatalf("unexpected response: %+v", got)
	}
	if len(got.EducationLinks) != 1 || got.EducationTips[0] != "Desconfie de urgência" {
		t.Fatalf("unexpected education fields: %+v", got)
	}

	seen := detector.seen()
	if len(seen) != 1 {
		t.Fatalf("detector called %d times", len(seen))
	}
	if seen[0].SubmitterID != "u-42" || seen[0].DeviceInfo["version"] != "14" {
		t.Fatalf("unexpected message: %+v", seen[0])
	}
}

func TestAnalyzeEndpointDefaults(t *testing.T) {
	detector := &fakeDetector{}
	h := newTestHTTPFrontend(detector, zap.NewNop())

	resp := postJSON(t, h, "/analyze", `{"message":"oi"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := detector.seen()[0].SubmitterID; got != anonymousSubmitter {
		t.Fatalf("submitter = %q, want %q", got, anonymousSubmitter)
	}

	// Empty lists are serialized as [] not null
	var raw map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["recommendations"].([]interface{}); !ok {
		t.Fatalf("recommendations not a list: %v", raw["recommendations"])
	}
}

func TestAnalyzeEndpointRejectsBadBody(t *testing.T) {
	detector := &fakeDetector{}
	h := newTestHTTPFrontend(detector, zap.NewNop())

	tests := map[string]string{
		"not json":   `message=oi`,
		"wrong type": `{"message": 12}`,
		"truncated":  `{"message": "oi"`,
		"oversized":  `{"message":"` + strings.Repeat("a", 1<<17) + `"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, h, "/analyze", body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
	if n := len(detector.seen()); n != 0 {
		t.Fatalf("detector called %d times for invalid requests", n)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	obsCore, logs := observer.New(zap.InfoLevel)
	h := newTestHTTPFrontend(&fakeDetector{}, zap.New(obsCore))

	resp := postJSON(t, h, "/feedback", `{"analysis_id":"a1b2","feedback_type":"false_positive","comment":"era minha mãe"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "success" || got["message"] != feedbackAck {
		t.Fatalf("unexpected ack: %v", got)
	}
	if logs.FilterMessage("Feedback received").Len() != 1 {
		t.Fatal("feedback was not logged")
	}

	resp = postJSON(t, h, "/feedback", `{"analysis_id":"a1b2"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without feedback_type, got %d", resp.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestHTTPFrontend(&fakeDetector{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || !bytes.Contains(resp.Body.Bytes(), []byte(`"ok"`)) {
		t.Fatalf("health = %d %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
