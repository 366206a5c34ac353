package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func responderAt(t *testing.T, url string) *HTTPResponder {
	t.Helper()
	t.Setenv("RESPONDER_URL", url)
	r, err := NewHTTPResponderFromEnv()
	if err != nil {
		t.Fatalf("NewHTTPResponderFromEnv: %v", err)
	}
	return r
}

func TestAskDecodesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["question"] != "what is redis?" {
			t.Errorf("question = %q", body["question"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":        "an in-memory data store",
			"confidence":    0.87,
			"sourceSection": "storage",
		})
	}))
	defer srv.Close()

	answer, err := responderAt(t, srv.URL).Ask(context.Background(), "what is redis?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Answer != "an in-memory data store" {
		t.Fatalf("answer = %q", answer.Answer)
	}
	if answer.Confidence != 0.87 {
		t.Fatalf("confidence = %v", answer.Confidence)
	}
}

func TestAskRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := responderAt(t, srv.URL).Ask(context.Background(), "hello?"); err == nil {
		t.Fatal("non-200 status must fail")
	}
}

func TestAskRejectsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": ""})
	}))
	defer srv.Close()

	if _, err := responderAt(t, srv.URL).Ask(context.Background(), "hello?"); err == nil {
		t.Fatal("empty answer must fail")
	}
}

func TestAskRequiresConfiguredEndpoint(t *testing.T) {
	t.Setenv("RESPONDER_URL", "")
	if _, err := NewHTTPResponderFromEnv(); err == nil {
		t.Fatal("missing RESPONDER_URL must fail construction")
	}
}
