package transcriber

import (
	"context"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"

	"notewriter/encoder"
	"notewriter/log"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Google calls the Cloud Speech-to-Text v1 synchronous Recognize method.
// The gRPC client is dialed on first use and kept for the process lifetime.
type Google struct {
	apiKey string
	lang   string

	once      sync.Once
	client    *speech.Client
	dialErr   error
	recognize recognizeFunc
}

func NewGoogle(apiKey string) *Google {
	return &Google{apiKey: apiKey, lang: "en"}
}

func (g *Google) Name() string { return "google" }

func (g *Google) SetLanguage(lang string) { g.lang = lang }

func (g *Google) GetLanguage() string { return g.lang }

func (g *Google) dial(ctx context.Context) error {
	g.once.Do(func() {
		if g.recognize != nil {
			return
		}
		client, err := speech.NewClient(context.WithoutCancel(ctx), option.WithAPIKey(g.apiKey))
		if err != nil {
			g.dialErr = err
			return
		}
		g.client = client
		g.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return client.Recognize(ctx, req)
		}
	})
	if g.dialErr != nil {
		return &ServiceError{Provider: g.Name(), Err: g.dialErr}
	}
	return nil
}

func (g *Google) warm(ctx context.Context) {
	if err := g.dial(ctx); err != nil {
		log.Warnf("google_dial_failed: %v", err)
	}
}

func (g *Google) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *Google) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		g.SetLanguage(cfg.Language)
	}
	if err := g.dial(ctx); err != nil {
		return nil, err
	}
	return newBatchSession(ctx, cfg, g.transcribe)
}

// languageCode turns a bare language into the regional tag the API expects.
func languageCode(lang string) string {
	switch {
	case lang == "":
		return "en-US"
	case strings.Contains(lang, "-"):
		return lang
	case lang == "en":
		return "en-US"
	default:
		return lang
	}
}

func (g *Google) transcribe(ctx context.Context, audioData []byte, format string) (*Result, error) {
	enc := speechpb.RecognitionConfig_FLAC
	if format == "wav" {
		enc = speechpb.RecognitionConfig_LINEAR16
	}
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   enc,
			SampleRateHertz:            encoder.SampleRate,
			AudioChannelCount:          encoder.Channels,
			LanguageCode:               languageCode(g.lang),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	}

	start := time.Now()
	resp, err := g.recognize(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		se := &ServiceError{Provider: g.Name(), Err: err}
		if st, ok := status.FromError(err); ok {
			se.StatusCode = int(st.Code())
			se.Body = st.Message()
		}
		return nil, se
	}

	var parts []string
	var confidence float64
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		confidence = max(confidence, float64(alts[0].GetConfidence()))
	}

	var billed float64
	if d := resp.GetTotalBilledTime(); d != nil {
		billed = d.AsDuration().Seconds()
	}

	return &Result{
		Text:       strings.Join(parts, " "),
		Metrics:    &NetworkMetrics{TTFB: elapsed, Total: elapsed},
		Confidence: confidence,
		Duration:   billed,
	}, nil
}

