package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestForOperation_Dimensions(t *testing.T) {
	initOnce.Do(func() {})
	serviceName = "manty-test"

	r := ForOperation("match")
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["Operation"] != "match" {
		t.Errorf("expected Operation dimension match, got %s", r.dimensions["Operation"])
	}
	if r.dimensions["ServiceName"] != "manty-test" {
		t.Errorf("expected ServiceName dimension manty-test, got %s", r.dimensions["ServiceName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	old := os.Stdout
	rPipe, w, _ := os.Pipe()
	os.Stdout = w

	serviceName = "" // Clear for test isolation

	rec := ForOperation("analyze")
	rec.Latency("GeminiApiLatencyMs", 1234*time.Millisecond)
	rec.Count("GeminiApiCalls")
	rec.Property("mediaRef", "https://cdn.example.com/a.jpg")
	rec.Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(rPipe)

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if _, ok := doc["_aws"]; !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if doc["GeminiApiLatencyMs"] != float64(1234) {
		t.Errorf("expected GeminiApiLatencyMs 1234, got %v", doc["GeminiApiLatencyMs"])
	}
	if doc["Operation"] != "analyze" {
		t.Errorf("expected Operation analyze, got %v", doc["Operation"])
	}
	if doc["mediaRef"] != "https://cdn.example.com/a.jpg" {
		t.Errorf("property mediaRef missing, got %v", doc["mediaRef"])
	}
}

func TestRecorder_EmptyFlushEmitsNothing(t *testing.T) {
	old := os.Stdout
	rPipe, w, _ := os.Pipe()
	os.Stdout = w

	ForOperation("noop").Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(rPipe)
	if buf.Len() != 0 {
		t.Errorf("expected no output for metric-less flush, got %q", buf.String())
	}
}
