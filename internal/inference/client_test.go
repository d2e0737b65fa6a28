package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"store_assistant/internal/config"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.Config{InferenceBaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
}

func TestChatSendsRequestAndNormalizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Message != "how much maputi is left?" || req.UserID != "u1" || req.SessionID != "s1" || req.IsURL {
			t.Errorf("unexpected payload %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"success","response":"You have 12 packets."}`)
	})

	reply, err := client.Chat(context.Background(), ChatRequest{Message: "how much maputi is left?", UserID: "u1", SessionID: "s1"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Status != "success" || reply.Message != "You have 12 packets." {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if reply.Product != nil {
		t.Fatalf("expected no product")
	}
}

func TestChatDecodesUntypedBody(t *testing.T) {
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, `{"response":"Weekly report","report":"data:application/pdf;base64,`+pdf+`"}`)
	})

	reply, err := client.Chat(context.Background(), ChatRequest{Message: "report please"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Message != "Weekly report" || string(reply.ReportPDF) != "%PDF-1.4" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":`)
	})
	if _, err := client.Chat(context.Background(), ChatRequest{Message: "hi"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestChatEmptyMessage(t *testing.T) {
	client := NewClient(config.Config{InferenceBaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	if _, err := client.Chat(context.Background(), ChatRequest{Message: "  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusRequestEntityTooLarge, want: ErrPayloadTooLarge},
		{status: http.StatusInternalServerError, want: ErrServer},
		{status: http.StatusBadGateway, want: ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.Chat(context.Background(), ChatRequest{Message: "hi"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOtherStatusIsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad input")
	})
	_, err := client.Chat(context.Background(), ChatRequest{Message: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Body != "bad input" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !strings.Contains(FriendlyError(err), "400") {
		t.Fatalf("unexpected friendly text %q", FriendlyError(err))
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := client.Chat(context.Background(), ChatRequest{Message: "hi"}); !errors.Is(err, ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls.Load())
	}
}

func TestAnalyzeProductImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("user_id") != "u1" {
			t.Errorf("unexpected user_id %q", r.FormValue("user_id"))
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			body, _ := io.ReadAll(file)
			if header.Filename != "soap.jpg" || string(body) != "jpegbytes" {
				t.Errorf("unexpected upload %s %q", header.Filename, body)
			}
		}
		_, _ = io.WriteString(w, `{"status":"success","message":"Found it","data":{"title":"Bar Soap","brand":"Geisha","unit_price":"1.20","stock_quantity":24}}`)
	})

	reply, err := client.AnalyzeProductImage(context.Background(), "u1", "soap.jpg", []byte("jpegbytes"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if reply.Product == nil {
		t.Fatalf("expected product")
	}
	p := reply.Product
	if p.Name != "Bar Soap" || p.Brand != "Geisha" || p.UnitPrice != 1.20 || p.Quantity != 24 {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestAnalyzeRejectsLargeImageLocally(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	_, err := client.AnalyzeProductImage(context.Background(), "u1", "big.jpg", make([]byte, MaxImageSize+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestNormalizeAliases(t *testing.T) {
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))
	tests := []struct {
		name      string
		body      string
		wantMsg   string
		wantName  string
		wantPrice float64
		wantQty   float64
		wantPDF   bool
	}{
		{
			name:      "camel case price under product",
			body:      `{"message":"ok","product":{"name":"Popcorn","unitPrice":0.5,"quantity":10}}`,
			wantMsg:   "ok",
			wantName:  "Popcorn",
			wantPrice: 0.5,
			wantQty:   10,
		},
		{
			name:      "plain price and title",
			body:      `{"response":"done","data":{"title":"Cooking Oil","price":"$3.50"}}`,
			wantMsg:   "done",
			wantName:  "Cooking Oil",
			wantPrice: 3.5,
		},
		{
			name:    "report only",
			body:    `{"message":"Here is your report","pdf_data":"` + pdf + `"}`,
			wantMsg: "Here is your report",
			wantPDF: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw rawReply
			if err := json.Unmarshal([]byte(tt.body), &raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			reply := normalize(raw)
			if reply.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, reply.Message)
			}
			if tt.wantName == "" && reply.Product != nil {
				t.Fatalf("expected no product, got %+v", reply.Product)
			}
			if tt.wantName != "" {
				if reply.Product == nil {
					t.Fatalf("expected product")
				}
				if reply.Product.Name != tt.wantName || reply.Product.UnitPrice != tt.wantPrice || reply.Product.Quantity != tt.wantQty {
					t.Fatalf("unexpected product %+v", reply.Product)
				}
			}
			if tt.wantPDF != (len(reply.ReportPDF) > 0) {
				t.Fatalf("pdf presence mismatch: %d bytes", len(reply.ReportPDF))
			}
		})
	}
}

func TestFriendlyError(t *testing.T) {
	if FriendlyError(nil) != "" {
		t.Fatalf("expected empty text for nil")
	}
	if got := FriendlyError(ErrPayloadTooLarge); !strings.Contains(got, "too large") {
		t.Fatalf("unexpected text %q", got)
	}
	if got := FriendlyError(errors.New("dial tcp: refused")); !strings.Contains(got, "connection") {
		t.Fatalf("unexpected text %q", got)
	}
}
