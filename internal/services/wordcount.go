package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/storyloft/storyloft-backend/internal/logger"
)

// fallbackBytesPerWord is the deterministic estimate used when the
// extraction webhook is unreachable or returns garbage.
const fallbackBytesPerWord = 6

const ExtractionQualityEstimated = "estimated"

type WordCountResult struct {
	WordCount          int    `json:"wordCount"`
	FormattedWordCount string `json:"formattedWordCount"`
	ExtractionQuality  string `json:"extractionQuality"`
}

// WordCountClient forwards a manuscript PDF to the external analysis
// webhook and reports the extracted word count.
type WordCountClient interface {
	Extract(ctx context.Context, filename string, pdf []byte, phaseType string) (*WordCountResult, error)
}

type wordCountClient struct {
	log        *logger.Logger
	webhookURL string
	httpClient *http.Client
}

func NewWordCountClient(baseLog *logger.Logger) (WordCountClient, error) {
	webhookURL := os.Getenv("WORDCOUNT_WEBHOOK_URL")
	if webhookURL == "" {
		return nil, fmt.Errorf("missing WORDCOUNT_WEBHOOK_URL")
	}
	return &wordCountClient{
		log:        baseLog.With("service", "WordCountClient"),
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// FallbackEstimate derives a word count from the raw file size alone.
func FallbackEstimate(fileSizeBytes int) *WordCountResult {
	words := fileSizeBytes / fallbackBytesPerWord
	return &WordCountResult{
		WordCount:          words,
		FormattedWordCount: fmt.Sprintf("~%d words", words),
		ExtractionQuality:  ExtractionQualityEstimated,
	}
}

func (c *wordCountClient) Extract(ctx context.Context, filename string, pdf []byte, phaseType string) (*WordCountResult, error) {
	result, err := c.post(ctx, filename, pdf, phaseType)
	if err != nil {
		c.log.Warn("Word count extraction failed, falling back to size estimate", "error", err, "file_size", len(pdf))
		return FallbackEstimate(len(pdf)), nil
	}
	return result, nil
}

func (c *wordCountClient) post(ctx context.Context, filename string, pdf []byte, phaseType string) (*WordCountResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, fmt.Errorf("write pdf bytes: %w", err)
	}
	if err := writer.WriteField("phaseType", phaseType); err != nil {
		return nil, fmt.Errorf("write phase type: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webhook http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result WordCountResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode webhook response: %w", err)
	}
	if result.WordCount <= 0 {
		return nil, fmt.Errorf("webhook returned non-positive word count %d", result.WordCount)
	}
	return &result, nil
}
