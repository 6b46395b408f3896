package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
)

type OpenAI struct {
	baseTranscriber
	apiKey string
	model  string
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient("https://api.openai.com"),
			apiURL: "https://api.openai.com/v1/audio/transcriptions",
		},
		apiKey: apiKey,
		model:  "gpt-4o-transcribe",
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		o.SetLanguage(cfg.Language)
	}
	return newBatchSession(ctx, cfg, o.transcribe)
}

func (o *OpenAI) transcribe(ctx context.Context, audioData []byte, format string) (*Result, error) {
	req, err := whisperRequest(ctx, o.apiURL, o.apiKey, o.model, "json", o.lang, audioData, format)
	if err != nil {
		return nil, fmt.Errorf("building openai request: %w", err)
	}

	resp, err := o.send(o.Name(), req)
	if err != nil {
		return nil, err
	}

	var oResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &oResp); err != nil {
		return nil, &ServiceError{Provider: o.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("response parse error: %w", err)}
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return &Result{
		Text:      oResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}, nil
}
