package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
)

const groqAPIURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	baseTranscriber
	apiKey string
	model  string
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient("https://api.groq.com"),
			apiURL: groqAPIURL,
		},
		apiKey: apiKey,
		model:  "whisper-large-v3-turbo",
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		g.SetLanguage(cfg.Language)
	}
	return newBatchSession(ctx, cfg, g.transcribe)
}

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text             string  `json:"text"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		AvgLogProb       float64 `json:"avg_logprob"`
		CompressionRatio float64 `json:"compression_ratio"`
		Temperature      float64 `json:"temperature"`
	} `json:"segments"`
}

// whisperRequest builds the multipart upload shared by the
// OpenAI-compatible transcription endpoints.
func whisperRequest(ctx context.Context, apiURL, apiKey, model, responseFormat, lang string, audioData []byte, format string) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, err
	}

	writer.WriteField("model", model)
	writer.WriteField("response_format", responseFormat)
	if lang != "" {
		writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// send runs req and converts transport failures and non-200 answers into
// *ServiceError.
func (b *baseTranscriber) send(provider string, req *http.Request) (*TracedResponse, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Provider: provider, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Provider: provider, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp, nil
}

func (g *Groq) transcribe(ctx context.Context, audioData []byte, format string) (*Result, error) {
	req, err := whisperRequest(ctx, g.apiURL, g.apiKey, g.model, "verbose_json", g.lang, audioData, format)
	if err != nil {
		return nil, fmt.Errorf("building groq request: %w", err)
	}

	resp, err := g.send(g.Name(), req)
	if err != nil {
		return nil, err
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, &ServiceError{Provider: g.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("response parse error: %w", err)}
	}

	var noSpeechProb, avgLogProb float64
	var segments []Segment
	if len(gResp.Segments) > 0 {
		var logProbSum float64
		noSpeechProb = 1
		for _, seg := range gResp.Segments {
			// the clip counts as speech if any segment does
			noSpeechProb = min(noSpeechProb, seg.NoSpeechProb)
			logProbSum += seg.AvgLogProb
			segments = append(segments, Segment{
				Text:             seg.Text,
				NoSpeechProb:     seg.NoSpeechProb,
				AvgLogProb:       seg.AvgLogProb,
				CompressionRatio: seg.CompressionRatio,
				Temperature:      seg.Temperature,
				Start:            seg.Start,
				End:              seg.End,
			})
		}
		avgLogProb = logProbSum / float64(len(gResp.Segments))
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return &Result{
		Text:         gResp.Text,
		Metrics:      resp.Metrics,
		RateLimit:    remaining + "/" + limit,
		NoSpeechProb: noSpeechProb,
		AvgLogProb:   avgLogProb,
		Duration:     gResp.Duration,
		Segments:     segments,
	}, nil
}
