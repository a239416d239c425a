package transcriber

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// NetworkMetrics is the request timing breakdown captured per upload.
type NetworkMetrics struct {
	DNS        time.Duration
	TLS        time.Duration
	TTFB       time.Duration
	Total      time.Duration
	ConnReused bool
}

// TracedClient wraps http.Client with httptrace instrumentation so every
// transcription upload reports its timing breakdown.
type TracedClient struct {
	client *http.Client
}

func NewTracedClient() *TracedClient {
	return &TracedClient{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

type TracedResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Metrics    *NetworkMetrics
}

func (c *TracedClient) Do(req *http.Request) (*TracedResponse, error) {
	metrics := &NetworkMetrics{}
	var dnsStart, tlsStart, wroteRequest, firstByte time.Time

	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			metrics.ConnReused = info.Reused
		},
		DNSStart:          func(_ httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { metrics.DNS = time.Since(dnsStart) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { metrics.TLS = time.Since(tlsStart) },
		WroteRequest:      func(_ httptrace.WroteRequestInfo) { wroteRequest = time.Now() },
		GotFirstResponseByte: func() {
			firstByte = time.Now()
			metrics.TTFB = firstByte.Sub(wroteRequest)
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	reqStart := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	metrics.Total = time.Since(reqStart)

	return &TracedResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Metrics:    metrics,
	}, nil
}
