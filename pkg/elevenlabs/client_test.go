package elevenlabs

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/convai/agents/create", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		var req CreateAgentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ana", req.Name)
		assert.Equal(t, "You are Ana.", req.ConversationConfig.Agent.Prompt.Prompt)

		json.NewEncoder(w).Encode(map[string]string{"agent_id": "rv_123"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	agent, err := client.CreateAgent(&CreateAgentRequest{
		Name: "Ana",
		ConversationConfig: ConversationConfig{
			Agent: AgentBehavior{
				Prompt:       PromptConfig{Prompt: "You are Ana."},
				FirstMessage: "Hi!",
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "rv_123", agent.AgentID)
}

func TestCreateAgentUpstreamErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"voice not found"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.CreateAgent(&CreateAgentRequest{Name: "Ana"})

	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, `{"detail":"voice not found"}`, apiErr.Body)
}

func TestDeleteAgent(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	require.NoError(t, client.DeleteAgent("rv_123"))
	assert.Equal(t, "/convai/agents/rv_123", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestListAgents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convai/agents", r.URL.Path)
		io.WriteString(w, `{"agents":[{"agent_id":"rv_1","name":"Ana"},{"agent_id":"rv_2","name":"Bo"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	agents, err := client.ListAgents()

	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "rv_1", agents[0].AgentID)
	assert.Equal(t, "Bo", agents[1].Name)
}

func TestChatWithExtractedData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hi, I'm Maria, maria@example.com", req.Text)
		assert.Equal(t, "eleven_turbo_v2", req.ModelID)

		io.WriteString(w, `{"text":"Nice to meet you, Maria!","audio_url":"https://cdn.example.com/a.mp3",`+
			`"extracted_data":{"name":"Maria","email":"maria@example.com"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	resp, err := client.Chat(&ChatRequest{
		Text:    "Hi, I'm Maria, maria@example.com",
		ModelID: "eleven_turbo_v2",
	})

	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you, Maria!", resp.Text)
	require.NotNil(t, resp.AudioURL)
	assert.Equal(t, "https://cdn.example.com/a.mp3", *resp.AudioURL)
	require.NotNil(t, resp.ExtractedData)
	assert.Equal(t, "Maria", resp.ExtractedData.Name)
	assert.Equal(t, "maria@example.com", resp.ExtractedData.Email)
	assert.Empty(t, resp.ExtractedData.Phone)
}

func TestChatWithoutAudioOrExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"text":"Hello!"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	resp, err := client.Chat(&ChatRequest{Text: "Hi"})

	require.NoError(t, err)
	assert.Nil(t, resp.AudioURL)
	assert.True(t, resp.ExtractedData.Empty())
}

func TestCreateKnowledgeBaseFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convai/knowledge-base", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "brochure.pdf", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("pdf-bytes"), data)

		json.NewEncoder(w).Encode(map[string]string{"id": "kb_1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	item, err := client.CreateKnowledgeBaseFile("brochure.pdf", []byte("pdf-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "kb_1", item.ID)
}

func TestCreateKnowledgeBaseText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convai/knowledge-base/text", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pricing", req["name"])
		assert.Equal(t, "Unit A costs 300k.", req["text"])

		json.NewEncoder(w).Encode(map[string]string{"id": "kb_2"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	item, err := client.CreateKnowledgeBaseText("pricing", "Unit A costs 300k.")

	require.NoError(t, err)
	assert.Equal(t, "kb_2", item.ID)
}

func TestUpdateAgentSendsOnlyKnowledgeBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/convai/agents/rv_1", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"knowledge_base":["kb_1","kb_2"]}`, string(body))

		io.WriteString(w, `{"agent_id":"rv_1","knowledge_base":["kb_1","kb_2"]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	agent, err := client.UpdateAgent("rv_1", &UpdateAgentRequest{KnowledgeBaseIDs: []string{"kb_1", "kb_2"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"kb_1", "kb_2"}, agent.KnowledgeBaseIDs)
}

func TestExtractedDataEmpty(t *testing.T) {
	var nilData *ExtractedData
	assert.True(t, nilData.Empty())
	assert.True(t, (&ExtractedData{}).Empty())
	assert.False(t, (&ExtractedData{Phone: "+351123"}).Empty())
}
