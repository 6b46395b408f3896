package transcriber

import (
	"context"
	"sync"
)

// FakeTranscriber returns canned text without touching the network. With
// a script it answers successive sessions from the script in order and then
// repeats the last entry.
type FakeTranscriber struct {
	mu     sync.Mutex
	script []FakeReply
	calls  int
	fed    int
	lang   string
}

type FakeReply struct {
	Text string
	Err  error
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{script: []FakeReply{{Text: text, Err: err}}}
}

func NewFakeScript(replies ...FakeReply) *FakeTranscriber {
	return &FakeTranscriber{script: replies}
}

func (f *FakeTranscriber) Name() string           { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

// Calls reports how many sessions have been closed.
func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FedBytes reports the total audio fed across all sessions.
func (f *FakeTranscriber) FedBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fed
}

func (f *FakeTranscriber) next() FakeReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.script)-1)
	f.calls++
	if i < 0 {
		return FakeReply{}
	}
	return f.script[i]
}

func (f *FakeTranscriber) NewSession(_ context.Context, _ SessionConfig) (Session, error) {
	return &fakeSession{owner: f}, nil
}

type fakeSession struct {
	owner *FakeTranscriber
	n     int
}

func (s *fakeSession) Feed(pcm []byte) {
	s.n += len(pcm)
	s.owner.mu.Lock()
	s.owner.fed += len(pcm)
	s.owner.mu.Unlock()
}

func (s *fakeSession) Close() (SessionResult, error) {
	reply := s.owner.next()
	if reply.Err != nil {
		return SessionResult{}, reply.Err
	}
	r := SessionResult{
		Text:     reply.Text,
		HasText:  reply.Text != "",
		NoSpeech: reply.Text == "",
		Batch: &BatchStats{
			AudioLengthS: float64(s.n/2) / 16000,
			TotalTimeMs:  10,
		},
		Metrics: []string{"total: 10ms (fake)"},
	}
	r.captureMemStats()
	return r, nil
}
