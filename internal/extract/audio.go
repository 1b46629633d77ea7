package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// sourceLanguage is forced on every transcription request. Autodetection
// misclassifies short or noisy segments, so the recognizer never gets to
// guess.
const sourceLanguage = "en"

// WhisperClient talks to a whisper-server compatible HTTP endpoint.
type WhisperClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewWhisperClient creates a transcription client.
func NewWhisperClient(baseURL string) *WhisperClient {
	return &WhisperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // transcription can be very long
		},
	}
}

// transcriptionResponse is the verbose JSON shape returned by the server.
type transcriptionResponse struct {
	Language string                  `json:"language"`
	Segments []transcriptionSegment  `json:"segments"`
}

type transcriptionSegment struct {
	ID           int     `json:"id"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

// ExtractAudio transcribes an audio/video file and returns one block per
// non-empty segment. Segment confidence is recorded but never used to
// filter: a segment with a high no-speech probability is still a block.
func (c *WhisperClient) ExtractAudio(path string) (*block.ExtractedDocument, error) {
	resp, err := c.transcribe(context.Background(), path)
	if err != nil {
		return nil, err
	}

	var blocks []block.Block
	for i, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, &block.AudioBlock{
			BlockID:    fmt.Sprintf("seg_%d", i),
			Source:     text,
			Start:      seg.Start,
			End:        seg.End,
			Confidence: seg.NoSpeechProb,
		})
	}

	logger.Info("audio transcription complete",
		logger.String("file", path),
		logger.Int("segments", len(blocks)),
		logger.String("language", resp.Language))

	return &block.ExtractedDocument{
		SourcePath: path,
		Format:     types.FormatAudio,
		Blocks:     blocks,
		Metadata:   map[string]string{"language": resp.Language},
	}, nil
}

// transcribe posts the media file as multipart form data and decodes the
// verbose JSON segment list.
func (c *WhisperClient) transcribe(ctx context.Context, path string) (*transcriptionResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "cannot open audio file", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot build upload form", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot read audio file", err)
	}

	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("temperature", "0.0")
	writer.WriteField("language", sourceLanguage)
	writer.Close()

	url := c.baseURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot create transcription request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.Info("sending transcription request",
		logger.String("url", url),
		logger.String("file", filepath.Base(path)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "transcription server request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "cannot read transcription response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"transcription server error",
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
			nil)
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "malformed transcription response", err)
	}
	return &tr, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
