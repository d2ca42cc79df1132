package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeBotAPI serves getMe plus a configurable sendMessage response.
func fakeBotAPI(t *testing.T, sendStatus int, sendBody string, sends *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"wx","username":"wx_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			atomic.AddInt32(sends, 1)
			w.WriteHeader(sendStatus)
			_, _ = w.Write([]byte(sendBody))
		default:
			t.Errorf("unexpected bot API call: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSend_OK(t *testing.T) {
	var sends int32
	srv := fakeBotAPI(t, http.StatusOK, `{"ok":true,"result":{"message_id":1,"chat":{"id":42},"date":0}}`, &sends)
	defer srv.Close()

	s := NewSender(srv.URL+"/bot%s/%s", time.Second)
	if err := s.Send(context.Background(), "token-a", "42", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if atomic.LoadInt32(&sends) != 1 {
		t.Fatalf("want exactly one sendMessage call, got %d", sends)
	}
}

func TestSend_ProviderFailureCarriesMessage(t *testing.T) {
	var sends int32
	srv := fakeBotAPI(t, http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`, &sends)
	defer srv.Close()

	s := NewSender(srv.URL+"/bot%s/%s", time.Second)
	err := s.Send(context.Background(), "token-a", "42", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error should carry the provider description, got: %v", err)
	}
}

func TestSend_BadRecipient(t *testing.T) {
	s := NewSender("", time.Second)
	err := s.Send(context.Background(), "token-a", "not-a-chat-id", "hello")
	if err == nil || !strings.Contains(err.Error(), "bad recipient") {
		t.Fatalf("want bad recipient error, got %v", err)
	}
}
