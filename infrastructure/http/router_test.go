package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmdgate/cmdgate/application/usecase/admission"
	auditusecase "github.com/cmdgate/cmdgate/application/usecase/audit"
	"github.com/cmdgate/cmdgate/application/usecase/auth"
	"github.com/cmdgate/cmdgate/application/usecase/rules"
	"github.com/cmdgate/cmdgate/application/usecase/users"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/memory"
	"github.com/cmdgate/cmdgate/infrastructure/service/apikey"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
	"github.com/cmdgate/cmdgate/infrastructure/service/ratelimit"
	"github.com/cmdgate/cmdgate/infrastructure/service/token"
)

type gatewayFixture struct {
	router   http.Handler
	rules    *memory.RuleRepository
	ledger   *memory.LedgerRepository
	audit    *memory.AuditRepository
	keys     *apikey.Service
	adminKey string
}

func newGateway(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		rules:  memory.NewRuleRepository(),
		ledger: memory.NewLedgerRepository(),
		audit:  memory.NewAuditRepository(),
		keys:   apikey.NewService(bcrypt.MinCost),
	}
	principals := memory.NewPrincipalRepository()
	submissions := memory.NewSubmissionRepository()

	tokens, err := token.NewJWTService("test-secret")
	require.NoError(t, err)
	limiter, err := ratelimit.New(ratelimit.Config{Enabled: false}, logrus.New())
	require.NoError(t, err)

	log := logger.Noop()
	uc := UseCases{
		Auth:      auth.NewUseCase(principals, f.ledger, f.keys, tokens, time.Hour, log),
		Admission: admission.NewEngine(f.rules, f.ledger, submissions, f.audit, log, 10, admission.PolicyReject),
		Rules:     rules.NewUseCase(f.rules, f.audit, log),
		Users:     users.NewUseCase(principals, f.ledger, f.audit, f.keys, log),
		Audit:     auditusecase.NewUseCase(f.audit),
		RateLimit: limiter,
	}
	f.router = NewRouter(uc, log)

	f.adminKey = f.seedPrincipal(t, principals, "admin-1", entity.RoleAdmin, 1000)
	return f
}

func (f *gatewayFixture) seedPrincipal(t *testing.T, repo *memory.PrincipalRepository, id string, role entity.Role, credits int64) string {
	t.Helper()
	plaintext, keyID, hash, err := f.keys.Generate()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), entity.NewPrincipal(id, keyID, hash, role, 0)))
	_, err = f.ledger.Credit(context.Background(), id, credits)
	require.NoError(t, err)
	return plaintext
}

func (f *gatewayFixture) do(t *testing.T, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) response.Envelope {
	t.Helper()
	var env response.Envelope
	raw := struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	env.Status = raw.Status
	env.Message = raw.Message
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return env
}

// createMember provisions a member through the admin API and returns its
// one-time key and id.
func (f *gatewayFixture) createMember(t *testing.T, credits int64) (apiKey, id string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/users", f.adminKey, map[string]interface{}{
		"role":    "member",
		"credits": credits,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID     string `json:"id"`
		APIKey string `json:"api_key"`
	}
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.APIKey)
	return created.APIKey, created.ID
}

func TestHealth_NoAuthRequired(t *testing.T) {
	f := newGateway(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingOrInvalidKey(t *testing.T) {
	f := newGateway(t)

	rec := f.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/users/me", "cgk_bogus_bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/users/me", "not-even-a-key", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemberForbiddenFromAdminRoutes(t *testing.T) {
	f := newGateway(t)
	memberKey, _ := f.createMember(t, 100)

	ctx := context.Background()
	before, _ := f.audit.List(ctx)

	for _, probe := range []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/rules", nil},
		{http.MethodPost, "/rules", map[string]string{"pattern": "^ls", "action": "AUTO_ACCEPT"}},
		{http.MethodDelete, "/rules/some-id", nil},
		{http.MethodGet, "/users", nil},
		{http.MethodPost, "/users", map[string]string{"role": "member"}},
		{http.MethodPut, "/users/x/credits", map[string]int64{"credits": 5}},
		{http.MethodGet, "/audit-logs", nil},
	} {
		rec := f.do(t, probe.method, probe.path, memberKey, probe.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", probe.method, probe.path)
	}

	// denied requests leave no trace: no rules stored, no audit growth
	list, _ := f.rules.List(ctx)
	assert.Empty(t, list)
	after, _ := f.audit.List(ctx)
	assert.Len(t, after, len(before))
}

func TestAdminCanReadRules(t *testing.T) {
	f := newGateway(t)

	rec := f.do(t, http.MethodGet, "/rules", f.adminKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitCommand_EndToEnd(t *testing.T) {
	f := newGateway(t)

	rec := f.do(t, http.MethodPost, "/rules", f.adminKey, map[string]string{
		"pattern": `^ls`,
		"action":  "AUTO_ACCEPT",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	memberKey, memberID := f.createMember(t, 50)

	rec = f.do(t, http.MethodPost, "/commands", memberKey, map[string]string{
		"command_text": "ls -la",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var decision struct {
		Status     string `json:"status"`
		NewBalance *int64 `json:"new_balance"`
	}
	decodeData(t, rec, &decision)
	assert.Equal(t, "accepted", decision.Status)
	require.NotNil(t, decision.NewBalance)
	assert.Equal(t, int64(40), *decision.NewBalance)

	balance, _ := f.ledger.Balance(context.Background(), memberID)
	assert.Equal(t, int64(40), balance)

	// history shows up on GET /commands
	rec = f.do(t, http.MethodGet, "/commands", memberKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []struct {
		CommandText string `json:"command_text"`
	}
	decodeData(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "ls -la", history[0].CommandText)
}

func TestSubmitCommand_EmptyText(t *testing.T) {
	f := newGateway(t)
	memberKey, _ := f.createMember(t, 50)

	rec := f.do(t, http.MethodPost, "/commands", memberKey, map[string]string{"command_text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRule_InvalidPattern(t *testing.T) {
	f := newGateway(t)

	rec := f.do(t, http.MethodPost, "/rules", f.adminKey, map[string]string{
		"pattern": "([unclosed",
		"action":  "AUTO_ACCEPT",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteRule_Missing(t *testing.T) {
	f := newGateway(t)
	rec := f.do(t, http.MethodDelete, "/rules/ghost", f.adminKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetCredits(t *testing.T) {
	f := newGateway(t)
	_, memberID := f.createMember(t, 50)

	rec := f.do(t, http.MethodPut, fmt.Sprintf("/users/%s/credits", memberID), f.adminKey,
		map[string]int64{"credits": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]int64
	decodeData(t, rec, &data)
	assert.Equal(t, int64(500), data["credits"])

	rec = f.do(t, http.MethodPut, "/users/ghost/credits", f.adminKey, map[string]int64{"credits": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionTokenFlow(t *testing.T) {
	f := newGateway(t)

	rec := f.do(t, http.MethodPost, "/auth/token", f.adminKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var issued struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &issued)
	require.NotEmpty(t, issued.Token)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var me struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	decodeData(t, recorder, &me)
	assert.Equal(t, "admin-1", me.ID)
	assert.Equal(t, "admin", me.Role)
}

func TestAuditLog_RecordsDecisions(t *testing.T) {
	f := newGateway(t)
	memberKey, _ := f.createMember(t, 50)

	rec := f.do(t, http.MethodPost, "/commands", memberKey, map[string]string{"command_text": "uptime"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/audit-logs", f.adminKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Action string `json:"action"`
	}
	decodeData(t, rec, &entries)
	require.NotEmpty(t, entries)
	// newest first: the rejected command decision precedes the user creation
	assert.Equal(t, "command.rejected", entries[0].Action)
}
