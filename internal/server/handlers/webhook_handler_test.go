package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

type stubMessaging struct {
	handled  []models.WebhookPayload
	outbound []models.OutboundMessageRequest
	err      error
}

func (s *stubMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "secret" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (s *stubMessaging) HandleWebhook(_ context.Context, payload models.WebhookPayload) error {
	s.handled = append(s.handled, payload)
	return s.err
}

func (s *stubMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	s.outbound = append(s.outbound, req)
	return s.err
}

func (s *stubMessaging) BroadcastAlerts(context.Context) (int, error) { return 0, s.err }

func webhookEngine(svc *stubMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestVerifyEchoesChallenge(t *testing.T) {
	r := webhookEngine(&stubMessaging{})

	rec := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReceive(t *testing.T) {
	svc := &stubMessaging{}
	r := webhookEngine(svc)

	body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messages":[{"from":"919876543210","id":"m1","type":"text","text":{"body":"/prices wheat"}}]}}]}]}`
	rec := serve(r, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, svc.handled, 1) {
		msg := svc.handled[0].Entry[0].Changes[0].Value.Messages[0]
		assert.Equal(t, "/prices wheat", msg.Text.Body)
	}

	rec = serve(r, http.MethodPost, "/webhook", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = errors.New("send failed")
	rec = serve(r, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSendMessage(t *testing.T) {
	svc := &stubMessaging{}
	r := webhookEngine(svc)

	rec := serve(r, http.MethodPost, "/send-message", `{"to":"+919876543210","message":"Mandi closed tomorrow"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []models.OutboundMessageRequest{{To: "+919876543210", Message: "Mandi closed tomorrow"}}, svc.outbound)

	rec = serve(r, http.MethodPost, "/send-message", `{"to":"+919876543210"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = errors.New("upstream down")
	rec = serve(r, http.MethodPost, "/send-message", `{"to":"1","message":"x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
