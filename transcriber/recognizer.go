package transcriber

import (
	"context"
	"fmt"
	"strings"

	"notewriter/log"
)

// Whisper-style providers report a no-speech probability per segment; a
// clip whose most speech-like segment still scores above this is dropped.
const noSpeechCutoff = 0.9

// Recognizer runs one capture through a fresh session and reduces the
// outcome to text, ErrNoSpeech, or an error.
type Recognizer struct {
	t   Transcriber
	cfg SessionConfig
}

func NewRecognizer(t Transcriber, cfg SessionConfig) *Recognizer {
	return &Recognizer{t: t, cfg: cfg}
}

func (r *Recognizer) Name() string { return r.t.Name() }

func (r *Recognizer) Recognize(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}
	s, err := r.t.NewSession(ctx, r.cfg)
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	s.Feed(pcm)
	res, err := s.Close()
	if err != nil {
		return "", err
	}

	if b := res.Batch; b != nil {
		log.TranscriptionMetrics(log.Metrics{
			AudioLengthS:     b.AudioLengthS,
			RawSizeKB:        b.RawSizeKB,
			CompressedSizeKB: b.CompressedSizeKB,
			EncodeTimeMs:     b.EncodeTimeMs,
			DNSTimeMs:        b.DNSTimeMs,
			TLSTimeMs:        b.TLSTimeMs,
			TTFBMs:           b.TTFBMs,
			TotalTimeMs:      b.TotalTimeMs,
		}, r.t.Name(), r.cfg.Format, b.ConnReused)
	}

	text := strings.TrimSpace(res.Text)
	if res.NoSpeech || text == "" {
		return "", ErrNoSpeech
	}
	if res.NoSpeechProb > noSpeechCutoff {
		log.Infof("no_speech_dropped prob=%.2f", res.NoSpeechProb)
		return "", ErrNoSpeech
	}
	return text, nil
}
