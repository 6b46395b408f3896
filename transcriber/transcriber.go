package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"notewriter/log"
)

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Segment struct {
	Text             string
	NoSpeechProb     float64
	AvgLogProb       float64
	CompressionRatio float64
	Temperature      float64
	Start            float64
	End              float64
}

type Result struct {
	Text         string
	Metrics      *NetworkMetrics
	RateLimit    string
	Confidence   float64
	NoSpeechProb float64
	AvgLogProb   float64
	Duration     float64
	Segments     []Segment
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
	lang   string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// provider order for automatic selection
var providers = []struct {
	name   string
	envKey string
	build  func(key string) Transcriber
}{
	{"google", "GOOGLE_API_KEY", func(k string) Transcriber { return NewGoogle(k) }},
	{"groq", "GROQ_API_KEY", func(k string) Transcriber { return NewGroq(k) }},
	{"openai", "OPENAI_API_KEY", func(k string) Transcriber { return NewOpenAI(k) }},
	{"deepgram", "DEEPGRAM_API_KEY", func(k string) Transcriber { return NewDeepgram(k) }},
}

// New builds the named provider from its API key in the environment. With
// an empty name the first provider that has a key wins.
func New(provider string) (Transcriber, error) {
	for _, p := range providers {
		if provider != "" && provider != p.name {
			continue
		}
		key := os.Getenv(p.envKey)
		if key == "" {
			if provider != "" {
				return nil, fmt.Errorf("%s provider selected but %s is not set", p.name, p.envKey)
			}
			continue
		}
		return p.build(key), nil
	}
	if provider != "" {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	return nil, fmt.Errorf("set GOOGLE_API_KEY, GROQ_API_KEY, OPENAI_API_KEY or DEEPGRAM_API_KEY environment variable")
}

// NewWithKey builds the named provider with an explicit API key.
func NewWithKey(provider, key string) (Transcriber, error) {
	for _, p := range providers {
		if p.name == provider {
			return p.build(key), nil
		}
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}

// Providers lists the provider names in selection order.
func Providers() []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.name
	}
	return names
}

type warmer interface {
	warm(ctx context.Context)
}

// Warm pre-opens the provider's connection so the first recognition does
// not pay for the handshake.
func Warm(ctx context.Context, t Transcriber) {
	if w, ok := t.(warmer); ok {
		w.warm(ctx)
	}
}

func (b *baseTranscriber) warm(_ context.Context) {
	if d := b.client.Warm(); d > 0 {
		log.Infof("connection_warmed tls_ms=%d", d.Milliseconds())
	}
}
