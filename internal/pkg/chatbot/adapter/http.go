package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go-courier/internal/pkg/chatbot/port"
)

const defaultAskTimeout = 15 * time.Second

// HTTPResponder talks to the responder service over its JSON contract:
// POST {"question": ...} -> {"answer", "confidence", "sourceSection"}.
type HTTPResponder struct {
	url    string
	client *http.Client
}

// NewHTTPResponderFromEnv reads the endpoint from RESPONDER_URL.
func NewHTTPResponderFromEnv() (*HTTPResponder, error) {
	url := os.Getenv("RESPONDER_URL")
	if url == "" {
		return nil, errors.New("chatbot: RESPONDER_URL environment variable is not set")
	}
	return &HTTPResponder{
		url:    url,
		client: &http.Client{Timeout: defaultAskTimeout},
	}, nil
}

var _ port.Responder = (*HTTPResponder)(nil)

func (r *HTTPResponder) Ask(ctx context.Context, question string) (*port.Answer, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("chatbot: encode question: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultAskTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chatbot: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chatbot: call responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot: responder returned status %d", resp.StatusCode)
	}

	var answer port.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("chatbot: decode answer: %w", err)
	}
	if answer.Answer == "" {
		return nil, errors.New("chatbot: responder returned an empty answer")
	}
	return &answer, nil
}
