package transcriber

import (
	"context"
	"errors"
	"testing"
)

func TestRecognizerMapping(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		reply   FakeReply
		want    string
		wantErr error
	}{
		{"text", FakeReply{Text: " hi there "}, "hi there", nil},
		{"empty", FakeReply{Text: ""}, "", ErrNoSpeech},
		{"blank", FakeReply{Text: "   "}, "", ErrNoSpeech},
		{"error", FakeReply{Err: boom}, "", boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecognizer(NewFakeScript(tt.reply), SessionConfig{})
			got, err := r.Recognize(context.Background(), testPCM(160))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecognizerEmptyCapture(t *testing.T) {
	fake := NewFake("should not be used", nil)
	_, err := NewRecognizer(fake, SessionConfig{}).Recognize(context.Background(), nil)
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("got %v, want ErrNoSpeech", err)
	}
	if fake.Calls() != 0 {
		t.Errorf("empty capture reached the transcriber")
	}
}

func TestRecognizerDropsLikelySilence(t *testing.T) {
	tr := &stubTranscriber{res: SessionResult{Text: "Thank you.", HasText: true, NoSpeechProb: 0.97}}
	_, err := NewRecognizer(tr, SessionConfig{}).Recognize(context.Background(), testPCM(160))
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("got %v, want ErrNoSpeech for high no-speech probability", err)
	}
}

func TestFakeScriptRepeatsLast(t *testing.T) {
	f := NewFakeScript(FakeReply{Text: "one"}, FakeReply{Text: "two"})
	r := NewRecognizer(f, SessionConfig{})
	var got []string
	for range 3 {
		text, _ := r.Recognize(context.Background(), testPCM(10))
		got = append(got, text)
	}
	if got[0] != "one" || got[1] != "two" || got[2] != "two" {
		t.Errorf("got %v", got)
	}
	if f.Calls() != 3 || f.FedBytes() != 60 {
		t.Errorf("calls=%d fed=%d", f.Calls(), f.FedBytes())
	}
}

type stubTranscriber struct {
	res SessionResult
}

func (s *stubTranscriber) Name() string        { return "stub" }
func (s *stubTranscriber) SetLanguage(string)  {}
func (s *stubTranscriber) GetLanguage() string { return "" }
func (s *stubTranscriber) NewSession(context.Context, SessionConfig) (Session, error) {
	return s, nil
}
func (s *stubTranscriber) Feed([]byte)                   {}
func (s *stubTranscriber) Close() (SessionResult, error) { return s.res, nil }
