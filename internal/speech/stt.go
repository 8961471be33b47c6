package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Transcription is the result of converting speech to text.
type Transcription struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Transcriber converts visitor audio into text through an external STT
// service (a Whisper-style HTTP server). Errors propagate to the caller:
// without a transcription the pipeline has nothing to answer.
type Transcriber struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewTranscriber creates a transcriber client for the given service URL.
func NewTranscriber(baseURL string, timeout time.Duration) *Transcriber {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Transcriber{
		baseURL:  baseURL,
		language: "fr",
		client:   &http.Client{Timeout: timeout},
	}
}

// Transcribe sends audio bytes and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.WriteField("language", t.language); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, detail)
	}

	var result Transcription
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode transcription: %w", err)
	}
	if result.Language == "" {
		result.Language = t.language
	}
	return &result, nil
}
