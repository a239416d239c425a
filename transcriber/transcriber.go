// Package transcriber uploads recorded audio to the remote speech API and
// maps every failure onto a closed set of classified errors.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"time"

	"dicto/audio"
	"dicto/encoder"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	Model          = "whisper-large-v3-turbo"

	// LanguageAuto asks the service to infer the language from the audio;
	// the language field is omitted from the request entirely.
	LanguageAuto = "auto"

	// MaxUploadBytes is the hard payload limit checked before any network call.
	MaxUploadBytes = 25_000_000

	transcribeTimeout = 60 * time.Second
	validateTimeout   = 10 * time.Second
)

// Credentials resolves the API key. A missing key fails fast with
// an invalid-credential error before any network traffic.
type Credentials interface {
	APIKey() (string, bool)
}

// Transcription is a successful upload result.
type Transcription struct {
	Text    string
	Format  string
	Bytes   int64
	Metrics *NetworkMetrics
}

// Client performs single-attempt transcription uploads. Retry policy, if
// any, belongs to the caller.
type Client struct {
	baseURL string
	creds   Credentials
	format  string // "wav" or "flac"
	http    *TracedClient
}

func NewClient(baseURL string, creds Credentials, format string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if format == "" {
		format = "wav"
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		format:  format,
		http:    NewTracedClient(),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one artifact and returns the transcribed text.
// All failures come back as *Error; no retry is attempted.
func (c *Client) Transcribe(ctx context.Context, artifact *audio.Artifact, language string) (*Transcription, error) {
	key, ok := c.creds.APIKey()
	if !ok || key == "" {
		return nil, errInvalidCredential()
	}

	if artifact.Size > MaxUploadBytes {
		return nil, errPayloadTooLarge(artifact.Size, MaxUploadBytes)
	}

	payload, filename, err := c.readPayload(artifact)
	if err != nil {
		return nil, errMalformed()
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errMalformed()
	}
	if _, err := part.Write(payload); err != nil {
		return nil, errMalformed()
	}

	writer.WriteField("model", Model)
	if language != "" && language != LanguageAuto {
		writer.WriteField("language", language)
	}
	writer.Close()

	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, errNetwork()
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if terr := classifyStatus(resp.StatusCode); terr != nil {
		return nil, terr
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, errMalformed()
	}

	return &Transcription{
		Text:    decoded.Text,
		Format:  c.format,
		Bytes:   int64(len(payload)),
		Metrics: resp.Metrics,
	}, nil
}

// Validate checks the credential against the lightweight models endpoint.
// A nil return means the key is valid.
func (c *Client) Validate(ctx context.Context) error {
	key, ok := c.creds.APIKey()
	if !ok || key == "" {
		return errInvalidCredential()
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return errNetwork()
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}

	if terr := classifyStatus(resp.StatusCode); terr != nil {
		return terr
	}
	return nil
}

// readPayload loads the artifact bytes in the configured upload format.
// FLAC uploads re-encode the WAV data chunk to cut upload size.
func (c *Client) readPayload(artifact *audio.Artifact) ([]byte, string, error) {
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return nil, "", err
	}

	if c.format == "flac" && len(data) > audio.WAVHeaderSize {
		flacData, err := encoder.FlacFromPCM(data[audio.WAVHeaderSize:])
		if err == nil {
			return flacData, "audio.flac", nil
		}
		// Fall through to the raw WAV on encode failure.
	}
	return data, "audio.wav", nil
}

// classifyStatus reproduces the exact response-code mapping:
// 200 passes, 401 is a credential failure, 429 a rate limit, and any
// other non-2xx a server error carrying the code.
func classifyStatus(code int) *Error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized:
		return errInvalidCredential()
	case code == http.StatusTooManyRequests:
		return errRateLimited()
	default:
		return errServer(code)
	}
}

func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errTimeout()
	}
	return errNetwork()
}
