// Package tts is a client for a speech-synthesis HTTP service. Synthesis is
// an optional capability: when no service URL is configured the client
// reports itself unavailable and callers fall back to subtitle output.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"doc-translator/internal/types"
)

// Client calls a TTS server that accepts text and returns a WAV waveform.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given server URL. An empty URL produces a
// client that is permanently unavailable.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Available reports whether a synthesis service is configured.
func (c *Client) Available() bool {
	return c != nil && c.baseURL != ""
}

// Probe checks the service's health endpoint. Used once at startup to log
// whether synthesis will be offered.
func (c *Client) Probe(ctx context.Context) error {
	if !c.Available() {
		return types.NewAppError(types.ErrConfig, "no synthesis service configured", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to create probe request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrNetwork, "synthesis service unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return types.NewAppErrorWithDetails(types.ErrNetwork,
			"synthesis service unhealthy",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}

type synthesisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Synthesize converts text to a mono waveform. The returned buffer carries
// the service's native sample rate; callers resample as needed.
func (c *Client) Synthesize(ctx context.Context, text, language string) (*audio.IntBuffer, error) {
	if !c.Available() {
		return nil, types.NewAppError(types.ErrConfig, "no synthesis service configured", nil)
	}

	body, err := json.Marshal(synthesisRequest{Text: text, Language: language})
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to marshal synthesis request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create synthesis request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "synthesis request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "failed to read synthesis response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppErrorWithDetails(types.ErrNetwork,
			"synthesis service error",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	decoder := wav.NewDecoder(bytes.NewReader(payload))
	if !decoder.IsValidFile() {
		return nil, types.NewAppError(types.ErrReconstruction,
			"synthesis service returned invalid WAV data", nil)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, types.NewAppError(types.ErrReconstruction,
			"cannot decode synthesized waveform", err)
	}

	return downmix(buf), nil
}

// downmix averages multi-channel audio into mono.
func downmix(buf *audio.IntBuffer) *audio.IntBuffer {
	channels := buf.Format.NumChannels
	if channels <= 1 {
		return buf
	}

	frames := len(buf.Data) / channels
	mono := make([]int, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += buf.Data[i*channels+ch]
		}
		mono[i] = sum / channels
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           mono,
		SourceBitDepth: buf.SourceBitDepth,
	}
}
