package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"askpilot/internal/core"
)

type stubAsker struct {
	result  core.AskResult
	lastReq core.AskRequest
}

func (s *stubAsker) Ask(_ context.Context, req core.AskRequest) core.AskResult {
	s.lastReq = req
	return s.result
}

type stubUsers struct {
	byEmail   map[string]*core.User
	byID      map[string]*core.User
	createErr error
	created   []core.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*core.User{}, byID: map[string]*core.User{}}
}

func (s *stubUsers) add(u core.User) {
	cp := u
	s.byEmail[u.Email] = &cp
	s.byID[u.UserID] = &cp
}

func (s *stubUsers) CreateUser(_ context.Context, user core.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return core.ErrEmailExists
	}
	s.add(user)
	s.created = append(s.created, user)
	return nil
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*core.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*core.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

type stubArchive struct {
	byUser  []core.ChatRecord
	blocked []core.ChatRecord
}

func (s *stubArchive) Append(context.Context, core.ChatRecord) error { return nil }
func (s *stubArchive) FindByUser(context.Context, string) ([]core.ChatRecord, error) {
	return s.byUser, nil
}
func (s *stubArchive) FindBlocked(context.Context) ([]core.ChatRecord, error) {
	return s.blocked, nil
}
func (s *stubArchive) FindAllowedWithEmbedding(context.Context, string) ([]core.ChatRecord, error) {
	return nil, nil
}

func newTestServer(asker Asker, users core.UserStore, archive core.ChatArchive) *httptest.Server {
	return httptest.NewServer(New(asker, users, archive, nil).Router())
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandleAsk_Success(t *testing.T) {
	conf := 82
	asker := &stubAsker{result: core.AskResult{
		Status:              core.AskSuccess,
		Topic:               "Explain quantum entanglement",
		Answer:              "Entangled particles share one quantum state.",
		Confidence:          &conf,
		FollowupUsedHistory: false,
	}}
	ts := newTestServer(asker, newStubUsers(), &stubArchive{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/ask", map[string]interface{}{
		"topic":  "Explain quantum entanglement",
		"userId": "u1",
		"history": []map[string]string{
			{"role": "user", "content": "hi"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Topic               string `json:"topic"`
		Answer              string `json:"answer"`
		Confidence          *int   `json:"confidence"`
		FollowupUsedHistory bool   `json:"followup_used_history"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Explain quantum entanglement", body.Topic)
	assert.Equal(t, "Entangled particles share one quantum state.", body.Answer)
	require.NotNil(t, body.Confidence)
	assert.Equal(t, 82, *body.Confidence)

	// The request, including history, reached the orchestrator intact.
	assert.Equal(t, "u1", asker.lastReq.UserID)
	require.Len(t, asker.lastReq.History, 1)
	assert.Equal(t, "hi", asker.lastReq.History[0].Content)
}

func TestHandleAsk_RefusalAndFailureShareErrorShape(t *testing.T) {
	tests := []struct {
		name    string
		result  core.AskResult
		wantMsg string
	}{
		{
			"refusal",
			core.AskResult{Status: core.AskSafetyRejected, Message: "refused"},
			"refused",
		},
		{
			"failure",
			core.AskResult{Status: core.AskPipelineFailure, Message: "Internal server error"},
			"Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&stubAsker{result: tt.result}, newStubUsers(), &stubArchive{})
			defer ts.Close()

			resp := postJSON(t, ts.URL+"/ask", map[string]string{
				"topic": "anything", "userId": "u1",
			})
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestHandleAsk_Validation(t *testing.T) {
	ts := newTestServer(&stubAsker{}, newStubUsers(), &stubArchive{})
	defer ts.Close()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing topic", map[string]string{"userId": "u1"}},
		{"missing userId", map[string]string{"topic": "question"}},
		{"blank topic", map[string]string{"topic": "   ", "userId": "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/ask", tt.body)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRegister(t *testing.T) {
	users := newStubUsers()
	ts := newTestServer(&stubAsker{}, users, &stubArchive{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/register", map[string]string{
		"email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "User registered successfully", body["message"])

	require.Len(t, users.created, 1)
	created := users.created[0]
	assert.NotEmpty(t, created.UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2")))

	// Duplicate email.
	resp = postJSON(t, ts.URL+"/register", map[string]string{
		"email": "alice@example.com", "password": "other",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, "Email already exists", body["error"])
}

func TestHandleRegister_Validation(t *testing.T) {
	ts := newTestServer(&stubAsker{}, newStubUsers(), &stubArchive{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/register", map[string]string{
		"email": "not-an-email", "password": "pw",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/register", map[string]string{
		"email": "a@b.com", "password": "",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	users := newStubUsers()
	users.add(core.User{UserID: "id-1", Email: "alice@example.com", PasswordHash: string(hash)})
	ts := newTestServer(&stubAsker{}, users, &stubArchive{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/login", map[string]string{
		"email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "id-1", body["userId"])
	assert.Equal(t, "alice@example.com", body["email"])

	// Wrong password and unknown user both return 401 with the same message.
	resp = postJSON(t, ts.URL+"/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, "Invalid credentials", body["error"])

	resp = postJSON(t, ts.URL+"/login", map[string]string{
		"email": "nobody@example.com", "password": "pw",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleChats(t *testing.T) {
	conf := 90
	archive := &stubArchive{byUser: []core.ChatRecord{
		{
			UserID:     "u1",
			Query:      "q2",
			Verdict:    core.VerdictAllowed,
			Response:   "a2",
			Confidence: &conf,
			CreatedAt:  time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			UserID:    "u1",
			Query:     "q1",
			Verdict:   core.VerdictBlocked,
			CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	ts := newTestServer(&stubAsker{}, newStubUsers(), archive)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chats/u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]interface{}
	decodeBody(t, resp, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "q2", body[0]["query"])
	assert.Equal(t, "ALLOWED", body[0]["verdict"])
	assert.Equal(t, "a2", body[0]["response"])
	assert.Equal(t, float64(90), body[0]["confidence"])
	assert.Equal(t, "BLOCKED", body[1]["verdict"])
	assert.Nil(t, body[1]["confidence"])
}

func TestHandleBlocked(t *testing.T) {
	users := newStubUsers()
	users.add(core.User{UserID: "u1", Email: "alice@example.com"})
	archive := &stubArchive{blocked: []core.ChatRecord{
		{
			UserID:    "u1",
			Query:     "bad query",
			Verdict:   core.VerdictBlocked,
			CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			UserID:  "ghost",
			Query:   "orphaned",
			Verdict: core.VerdictBlocked,
		},
	}}
	ts := newTestServer(&stubAsker{}, users, archive)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/admin/blocked")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]string
	decodeBody(t, resp, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "alice@example.com", body[0]["email"])
	assert.Equal(t, "bad query", body[0]["query"])
	assert.Equal(t, "2025-03-01T12:30:00Z", body[0]["createdAt"])

	// Records from deleted accounts still show, with a placeholder email.
	assert.Equal(t, "Unknown", body[1]["email"])
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(&stubAsker{}, newStubUsers(), &stubArchive{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/ask", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}
