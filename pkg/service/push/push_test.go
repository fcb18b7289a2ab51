package push_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/push"
)

var testMessage = &model.PushMessage{
	TargetUserIDs: []string{"user-1", "user-2"},
	Title:         "Event approved",
	Body:          "Hackathon is now open for participants",
	EventURL:      "https://example.com/events/ev-1",
}

func TestHTTPSend(t *testing.T) {
	t.Run("sends bearer-authenticated JSON", func(t *testing.T) {
		var received model.PushMessage
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer secret-token")
			gt.Value(t, r.Header.Get("Content-Type")).Equal("application/json")
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		h, err := push.NewHTTP(srv.URL, "secret-token")
		gt.NoError(t, err).Required()
		gt.NoError(t, h.Send(context.Background(), testMessage)).Required()
		gt.Value(t, received.Title).Equal("Event approved")
		gt.Value(t, received.TargetUserIDs).Equal([]string{"user-1", "user-2"})
	})

	t.Run("success flag is required", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"no tokens"}`))
		}))
		defer srv.Close()

		h, err := push.NewHTTP(srv.URL, "secret-token")
		gt.NoError(t, err).Required()
		gt.Error(t, h.Send(context.Background(), testMessage)).Is(push.ErrDeliveryFailed)
	})

	t.Run("non-2xx status fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		h, err := push.NewHTTP(srv.URL, "wrong")
		gt.NoError(t, err).Required()
		gt.Error(t, h.Send(context.Background(), testMessage)).Is(push.ErrDeliveryFailed)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		h, err := push.NewHTTP("https://example.com/push", "token")
		gt.NoError(t, err).Required()
		gt.Error(t, h.Send(context.Background(), &model.PushMessage{})).Is(push.ErrEmptyMessage)
	})

	t.Run("endpoint and token are required", func(t *testing.T) {
		_, err := push.NewHTTP("", "token")
		gt.Value(t, err).NotNil()
		_, err = push.NewHTTP("https://example.com/push", "")
		gt.Value(t, err).NotNil()
	})
}

func TestSlackSend(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chat.postMessage")
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		form, err = url.ParseQuery(string(body))
		gt.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	s, err := push.NewSlack("xoxb-test", "C123", push.WithSlackAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()
	gt.NoError(t, s.Send(context.Background(), testMessage)).Required()

	gt.Value(t, form.Get("channel")).Equal("C123")
	gt.String(t, form.Get("text")).Contains("Event approved")
	gt.String(t, form.Get("blocks")).Contains("Open event")
}

func TestBuildMessageBlocks(t *testing.T) {
	blocks := push.BuildMessageBlocks(testMessage)
	gt.Array(t, blocks).Length(3)

	blocks = push.BuildMessageBlocks(&model.PushMessage{Title: "Only title"})
	gt.Array(t, blocks).Length(1)
}

type stubSender struct {
	calls atomic.Int32
	err   error
}

func (s *stubSender) Send(ctx context.Context, msg *model.PushMessage) error {
	s.calls.Add(1)
	return s.err
}

func TestMulti(t *testing.T) {
	a, b := &stubSender{}, &stubSender{}
	gt.NoError(t, push.Multi{a, b}.Send(context.Background(), testMessage)).Required()
	gt.Value(t, a.calls.Load()).Equal(int32(1))
	gt.Value(t, b.calls.Load()).Equal(int32(1))

	failing := &stubSender{err: errors.New("boom")}
	err := push.Multi{a, failing}.Send(context.Background(), testMessage)
	gt.Value(t, err).NotNil()
	gt.Value(t, a.calls.Load()).Equal(int32(2))
}

func TestNop(t *testing.T) {
	gt.NoError(t, push.Nop{}.Send(context.Background(), testMessage))
}
