package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/internal/middlewares"
)

func newCampaignEcho(campaigns *fakeCampaigns) *echo.Echo {
	e := newTestEcho()
	h := NewCampaignHandler(campaigns, "[TEST] Daily Update")
	e.POST("/send-emails", h.SendEmails)
	e.GET("/send-emails", h.SendEmails)
	e.POST("/send-custom-emails", h.SendCustomEmails)
	e.POST("/trigger-test", h.TriggerTest, middlewares.APIKeyAuth("secret"))
	e.GET("/daily-template", h.DailyTemplate)
	return e
}

func decodeResult(t *testing.T, body []byte) domain.CampaignResult {
	t.Helper()
	var res domain.CampaignResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return res
}

func TestSendEmails_Success(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true, Message: "Emails sent to 3 contacts.", SentCount: 3, Total: 3}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-emails", "")
	assertStatus(t, rec, http.StatusOK)

	res := decodeResult(t, rec.Body.Bytes())
	if !res.Success || res.SentCount != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if campaigns.triggers[0] != domain.TriggerManual {
		t.Errorf("expected manual trigger, got %s", campaigns.triggers[0])
	}
	if campaigns.prefixes[0] != "" {
		t.Errorf("expected default prefix, got %q", campaigns.prefixes[0])
	}
}

func TestSendEmails_GetIsAccepted(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodGet, "/send-emails?subject=Morning%20Brief", "")
	assertStatus(t, rec, http.StatusOK)

	if campaigns.prefixes[0] != "Morning Brief" {
		t.Errorf("expected subject from query, got %q", campaigns.prefixes[0])
	}
}

func TestSendCustomEmails_UsesSubject(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-custom-emails", `{"subject":"Weekly Outlook"}`)
	assertStatus(t, rec, http.StatusOK)

	if campaigns.prefixes[0] != "Weekly Outlook" {
		t.Errorf("expected custom subject, got %q", campaigns.prefixes[0])
	}
}

func TestSendCustomEmails_BlankSubjectRejected(t *testing.T) {
	campaigns := &fakeCampaigns{}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-custom-emails", `{"subject":"   "}`)
	assertStatus(t, rec, http.StatusBadRequest)

	if len(campaigns.triggers) != 0 {
		t.Fatalf("runner must not be called for invalid input")
	}
}

func TestSendEmails_NoContactsIs200(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true, Message: "No contacts found; nothing to send."}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-emails", "")
	assertStatus(t, rec, http.StatusOK)

	if res := decodeResult(t, rec.Body.Bytes()); res.SentCount != 0 {
		t.Errorf("expected count=0, got %d", res.SentCount)
	}
}

func TestSendEmails_PartialFailureIs500(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{
		Success:   false,
		Message:   "Sent 2 of 3 emails; 1 failed: c@example.com (bad address)",
		SentCount: 2,
		Failures:  []domain.SendOutcome{{Email: "c@example.com", Status: domain.OutcomeFailed}},
	}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-emails", "")
	assertStatus(t, rec, http.StatusInternalServerError)

	res := decodeResult(t, rec.Body.Bytes())
	if res.SentCount != 2 || len(res.Failures) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSendEmails_FatalErrorIs500(t *testing.T) {
	campaigns := &fakeCampaigns{
		result: domain.CampaignResult{Success: false, Message: errBoom.Error()},
		err:    errBoom,
	}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-emails", "")
	assertStatus(t, rec, http.StatusInternalServerError)

	if res := decodeResult(t, rec.Body.Bytes()); res.Success {
		t.Errorf("expected success=false")
	}
}

func TestSendEmails_RunInProgressIs409(t *testing.T) {
	campaigns := &fakeCampaigns{
		result: domain.CampaignResult{Success: false, Message: "Campaign run already in progress"},
		err:    domain.ErrRunInProgress,
	}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/send-emails", "")
	assertStatus(t, rec, http.StatusConflict)
}

func TestTriggerTest_RequiresKey(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true}}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodPost, "/trigger-test", "")
	assertStatus(t, rec, http.StatusUnauthorized)
	if len(campaigns.triggers) != 0 {
		t.Fatalf("runner must not be called without a valid key")
	}
}

func TestTriggerTest_UsesTestPrefix(t *testing.T) {
	campaigns := &fakeCampaigns{result: domain.CampaignResult{Success: true}}
	e := newCampaignEcho(campaigns)

	req := newRequest(http.MethodPost, "/trigger-test", "")
	req.Header.Set(middlewares.APIKeyHeader, "secret")
	rec := serve(e, req)
	assertStatus(t, rec, http.StatusOK)

	if campaigns.triggers[0] != domain.TriggerTest {
		t.Errorf("expected test trigger, got %s", campaigns.triggers[0])
	}
	if campaigns.prefixes[0] != "[TEST] Daily Update" {
		t.Errorf("expected test prefix, got %q", campaigns.prefixes[0])
	}
}

func TestDailyTemplate(t *testing.T) {
	campaigns := &fakeCampaigns{preview: "<p>Hello {{NAME}}</p>"}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodGet, "/daily-template?name=Ana", "")
	assertStatus(t, rec, http.StatusOK)

	if rec.Body.String() != "<p>Hello Ana</p>" {
		t.Errorf("unexpected preview %q", rec.Body.String())
	}
}

func TestDailyTemplate_MissingTemplateIs404(t *testing.T) {
	campaigns := &fakeCampaigns{prevErr: domain.ErrTemplateMissing}
	e := newCampaignEcho(campaigns)

	rec := doRequest(e, http.MethodGet, "/daily-template", "")
	assertStatus(t, rec, http.StatusNotFound)
}
