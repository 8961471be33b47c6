package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Synthesizer turns text into speech through an external TTS service. The
// service accepts a text and voice identifier and streams back audio bytes;
// it may fail transiently, callers decide whether that is fatal.
type Synthesizer struct {
	baseURL string
	voice   string
	client  *http.Client
}

// NewSynthesizer creates a synthesizer client for the given service URL and
// default voice.
func NewSynthesizer(baseURL, voice string, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Synthesizer{
		baseURL: baseURL,
		voice:   voice,
		client:  &http.Client{Timeout: timeout},
	}
}

// Voice returns the configured default voice identifier.
func (s *Synthesizer) Voice() string {
	return s.voice
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize converts text into audio bytes using the default voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: s.voice})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis service returned %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis service returned empty audio")
	}
	return audio, nil
}

// Voice describes one voice offered by the TTS service.
type Voice struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Gender string `json:"gender"`
}

// ListVoices returns the voices available for a locale prefix (e.g. "fr").
func (s *Synthesizer) ListVoices(ctx context.Context, locale string) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/voices?locale="+locale, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request returned %d", resp.StatusCode)
	}

	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}
	return voices, nil
}
