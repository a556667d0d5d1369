package automation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaser-agent-backend/internal/rules"
	"chaser-agent-backend/internal/tasks"
)

func testRunner() (*Runner, *fakeDispatcher) {
	disp := &fakeDispatcher{}
	store := &fakeTaskStore{
		byID: map[int]tasks.Task{
			7: {ID: 7, Title: "Quarterly report", Status: tasks.StatusPending, Deadline: runNow.AddDate(0, 0, 5)},
		},
	}
	return &Runner{
		Tasks:      store,
		Rules:      &fakeRuleStore{active: []rules.Rule{}},
		Dispatcher: disp,
		Email:      &fakeEmailer{},
		Now:        func() time.Time { return runNow },
	}, disp
}

func TestCheckOverdueHandlerRejectsBadSecret(t *testing.T) {
	runner, _ := testRunner()
	handler := CheckOverdueHandler(runner, "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/cron/check-overdue", nil)
	req.Header.Set("x-cron-secret", "wrong")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckOverdueHandlerAcceptsSecret(t *testing.T) {
	runner, _ := testRunner()
	handler := CheckOverdueHandler(runner, "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/cron/check-overdue", nil)
	req.Header.Set("x-cron-secret", "topsecret")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report OverdueReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 0, report.Total)
}

func TestCheckOverdueHandlerOpenWhenUnconfigured(t *testing.T) {
	runner, _ := testRunner()
	handler := CheckOverdueHandler(runner, "")

	req := httptest.NewRequest(http.MethodGet, "/cron/check-overdue", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunAutomationHandler(t *testing.T) {
	runner, _ := testRunner()
	handler := RunAutomationHandler(runner, "")

	req := httptest.NewRequest(http.MethodPost, "/cron/run-automation", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "rules")
	assert.Contains(t, body, "scheduled")
}

func TestWorkflowWebhookSendReminder(t *testing.T) {
	runner, disp := testRunner()
	handler := WorkflowWebhookHandler(runner, "hooksecret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/workflow",
		strings.NewReader(`{"event":"send_reminder","taskId":7}`))
	req.Header.Set("x-webhook-secret", "hooksecret")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, disp.calls, 1)
	assert.Equal(t, 7, disp.calls[0].taskID)
}

func TestWorkflowWebhookUnknownTask(t *testing.T) {
	runner, _ := testRunner()
	handler := WorkflowWebhookHandler(runner, "")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/workflow",
		strings.NewReader(`{"event":"send_reminder","taskId":999}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflowWebhookRejectsGet(t *testing.T) {
	runner, _ := testRunner()
	handler := WorkflowWebhookHandler(runner, "")

	req := httptest.NewRequest(http.MethodGet, "/webhooks/workflow", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWorkflowWebhookUnknownEvent(t *testing.T) {
	runner, _ := testRunner()
	handler := WorkflowWebhookHandler(runner, "")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/workflow",
		strings.NewReader(`{"event":"reboot"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
