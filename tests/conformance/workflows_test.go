package conformance_test

import (
	"net/http"
	"testing"
)

func TestWorkflowExecuteEndToEnd(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/api/v1/workflows", map[string]any{
		"name": "Enrich example.com",
		"steps": []map[string]any{
			{"name": "lookup", "type": "enrich", "config": map[string]string{
				"type": "domain", "value": "example.com",
			}},
		},
	})
	mustStatus(t, resp, http.StatusOK)
	wf := readJSON(t, resp)
	id := assertIsString(t, wf, "id")

	resp = doRequest(t, http.MethodPost, "/api/v1/workflows/"+id+"/execute", nil)
	mustStatus(t, resp, http.StatusOK)
	exec := readJSON(t, resp)
	assertStringField(t, exec, "status", "completed")
	steps := assertIsArray(t, exec, "steps")
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	assertStringField(t, toObject(t, steps[0]), "status", "succeeded")

	resp = doRequest(t, http.MethodGet, "/api/v1/workflows/"+id+"/executions", nil)
	mustStatus(t, resp, http.StatusOK)
	list := readJSON(t, resp)
	assertNumberField(t, list, "total", 1)
}

func TestWorkflowApprovalOverHTTP(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/api/v1/workflows", map[string]any{
		"name": "Gated publish",
		"steps": []map[string]any{
			{"name": "signoff", "type": "approval"},
		},
	})
	mustStatus(t, resp, http.StatusOK)
	id := assertIsString(t, readJSON(t, resp), "id")

	resp = doRequest(t, http.MethodPost, "/api/v1/workflows/"+id+"/execute", nil)
	mustStatus(t, resp, http.StatusOK)
	exec := readJSON(t, resp)
	assertStringField(t, exec, "status", "waiting_approval")
	execID := assertIsString(t, exec, "id")

	resp = doRequest(t, http.MethodPost, "/api/v1/workflows/executions/"+execID+"/approve", nil)
	mustStatus(t, resp, http.StatusOK)
	approved := readJSON(t, resp)
	assertStringField(t, approved, "status", "completed")

	// A finished execution cannot be approved again.
	resp = doRequest(t, http.MethodPost, "/api/v1/workflows/executions/"+execID+"/approve", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	assertDetail(t, readJSON(t, resp), "Execution is not waiting for approval")
}

func TestWorkflowWebhookIsPublic(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/api/v1/workflows", map[string]any{
		"name":    "Inbound",
		"trigger": map[string]string{"type": "webhook"},
		"steps": []map[string]any{
			{"name": "pause", "type": "delay", "config": map[string]int{"seconds": 0}},
		},
	})
	mustStatus(t, resp, http.StatusOK)
	wf := readJSON(t, resp)
	trigger := assertIsObject(t, wf, "trigger")
	token := assertIsString(t, trigger, "webhook_token")

	// Webhook deliveries carry no credentials.
	authToken = ""
	resp = doRequest(t, http.MethodPost, "/api/v1/workflows/hooks/"+token, map[string]string{"event": "ping"})
	mustStatus(t, resp, http.StatusAccepted)
	job := readJSON(t, resp)
	assertStringField(t, job, "kind", "workflow.webhook")
}

func TestWorkflowValidation(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/api/v1/workflows", map[string]any{
		"name":    "Nightly",
		"trigger": map[string]string{"type": "schedule"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	details := assertValidationError(t, readJSON(t, resp))
	if len(details) != 1 || details[0]["type"] != "value_error" {
		t.Fatalf("details = %v", details)
	}
}
