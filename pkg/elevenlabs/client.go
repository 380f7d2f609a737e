package elevenlabs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// API is the surface of the remote conversational-AI provider used by this
// service. Handlers and background jobs depend on this interface so they can
// be exercised against a fake provider.
type API interface {
	CreateAgent(req *CreateAgentRequest) (*Agent, error)
	GetAgent(agentID string) (*Agent, error)
	UpdateAgent(agentID string, req *UpdateAgentRequest) (*Agent, error)
	DeleteAgent(agentID string) error
	ListAgents() ([]AgentSummary, error)
	CreateKnowledgeBaseFile(filename string, data []byte) (*KnowledgeBaseItem, error)
	CreateKnowledgeBaseText(name, text string) (*KnowledgeBaseItem, error)
	Chat(req *ChatRequest) (*ChatResponse, error)
}

// Client communicates with the provider's REST API using api-key header auth
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

var _ API = (*Client)(nil)

// APIError is a non-2xx response from the provider. The body is kept verbatim
// so callers can forward the upstream error to their own clients.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a new provider client instance
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateAgent provisions a new conversational agent on the provider account
func (c *Client) CreateAgent(req *CreateAgentRequest) (*Agent, error) {
	var agent Agent
	if err := c.doJSON("POST", "/convai/agents/create", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetAgent fetches the current remote configuration of an agent
func (c *Client) GetAgent(agentID string) (*Agent, error) {
	var agent Agent
	if err := c.doJSON("GET", "/convai/agents/"+agentID, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent patches an agent's remote configuration. Only the fields set on
// the request are sent, so callers must read-modify-write list fields such as
// the knowledge-base ids.
func (c *Client) UpdateAgent(agentID string, req *UpdateAgentRequest) (*Agent, error) {
	var agent Agent
	if err := c.doJSON("PATCH", "/convai/agents/"+agentID, req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent removes an agent from the provider account
func (c *Client) DeleteAgent(agentID string) error {
	return c.doJSON("DELETE", "/convai/agents/"+agentID, nil, nil)
}

// ListAgents returns every agent on the provider account
func (c *Client) ListAgents() ([]AgentSummary, error) {
	var resp listAgentsResponse
	if err := c.doJSON("GET", "/convai/agents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// CreateKnowledgeBaseFile uploads a raw file as a knowledge-base item
func (c *Client) CreateKnowledgeBaseFile(filename string, data []byte) (*KnowledgeBaseItem, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", c.BaseURL+"/convai/knowledge-base", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", c.APIKey)

	var item KnowledgeBaseItem
	if err := c.send(httpReq, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateKnowledgeBaseText stores a text document as a knowledge-base item
func (c *Client) CreateKnowledgeBaseText(name, text string) (*KnowledgeBaseItem, error) {
	req := map[string]string{"name": name, "text": text}
	var item KnowledgeBaseItem
	if err := c.doJSON("POST", "/convai/knowledge-base/text", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Chat sends a single user message and returns the assistant reply. The
// provider keeps its own conversational state; only the latest message is
// sent per call.
func (c *Client) Chat(req *ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON("POST", "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Helper to send a JSON request and decode the JSON response
func (c *Client) doJSON(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("xi-api-key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding provider response: %w", err)
		}
	}

	return nil
}
