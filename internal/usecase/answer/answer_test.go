package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/futig/knowledge-backend/internal/entity"
	pkgRetry "github.com/futig/knowledge-backend/internal/pkg/retry"
	"github.com/futig/knowledge-backend/internal/registry"
)

var fastRetry = pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

type spyGenerator struct {
	calls    int
	messages []entity.ChatMessage
	reply    string
	err      error
}

func (s *spyGenerator) Generate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	s.calls++
	s.messages = messages
	return s.reply, s.err
}

type stubRetriever struct {
	hits     []entity.SearchHit
	err      error
	settings entity.AdminSettings
}

func (s *stubRetriever) SearchWithSettings(ctx context.Context, query string, requestedTopK *int, settings entity.AdminSettings) ([]entity.SearchHit, error) {
	s.settings = settings
	return s.hits, s.err
}

func testSettings() entity.AdminSettings {
	return entity.AdminSettings{DefaultTopK: 5, MaxTopK: 20, EnableLogging: true, RagSystemPrompt: "Be helpful."}
}

func TestCompose_NoHitsSkipsGenerator(t *testing.T) {
	gen := &spyGenerator{reply: "should not be used"}
	c := NewComposer(gen, fastRetry)

	got, err := c.Compose(context.Background(), "anything?", nil, testSettings())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got.Answer != NotFoundAnswer {
		t.Errorf("Answer = %q", got.Answer)
	}
	if got.Citations == nil || len(got.Citations) != 0 {
		t.Errorf("Citations = %v, want empty non-nil", got.Citations)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestCompose_KeepsStoreOrder(t *testing.T) {
	hits := []entity.SearchHit{
		{ID: "a", Content: "first", Source: "a.txt", Score: 0.70},
		{ID: "b", Content: "second", Source: "", Score: 0.95},
		{ID: "c", Content: "third", Source: "c.txt", Score: 0.82},
	}
	gen := &spyGenerator{reply: "answer\n\nSources:\n- [Doc #2] x"}
	c := NewComposer(gen, fastRetry)

	got, err := c.Compose(context.Background(), "question?", hits, testSettings())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if gen.calls != 1 || len(gen.messages) != 2 {
		t.Fatalf("generator calls = %d, messages = %d", gen.calls, len(gen.messages))
	}

	user := gen.messages[1].Content
	wantBlocks := []string{
		"[Doc #1] source=a.txt id=a score=0.7\nfirst",
		"[Doc #2] source=unknown id=b score=0.95\nsecond",
		"[Doc #3] source=c.txt id=c score=0.82\nthird",
	}
	want := "CONTEXT:\n" + strings.Join(wantBlocks, "\n\n") + "\n\nQUESTION:\nquestion?"
	if user != want {
		t.Errorf("user message =\n%s\nwant\n%s", user, want)
	}

	for i, id := range []string{"a", "b", "c"} {
		if got.Citations[i].ID != id {
			t.Errorf("Citations[%d] = %s, want %s", i, got.Citations[i].ID, id)
		}
	}
}

func TestCompose_SystemPrompt(t *testing.T) {
	gen := &spyGenerator{reply: "ok"}
	c := NewComposer(gen, fastRetry)

	_, err := c.Compose(context.Background(), "q", []entity.SearchHit{{ID: "a", Content: "x"}}, testSettings())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	sys := gen.messages[0]
	if sys.Role != entity.ChatRoleSystem {
		t.Fatalf("first message role = %s", sys.Role)
	}
	for _, part := range []string{"Be helpful.", RefusalPhrase, "Sources:", "[Doc #1]"} {
		if !strings.Contains(sys.Content, part) {
			t.Errorf("system prompt missing %q", part)
		}
	}
	if !strings.HasPrefix(sys.Content, "Be helpful.") {
		t.Errorf("admin prompt should lead the system message")
	}
}

func TestCompose_EmptyReplyFallback(t *testing.T) {
	c := NewComposer(&spyGenerator{reply: "  "}, fastRetry)

	got, err := c.Compose(context.Background(), "q", []entity.SearchHit{{ID: "a"}}, testSettings())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got.Answer != NoAnswer {
		t.Errorf("Answer = %q, want fallback", got.Answer)
	}
}

func newTestUsecase(t *testing.T, retriever Retriever, gen Generator) (*AnswerUsecase, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(testSettings())
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return NewUsecase(retriever, NewComposer(gen, fastRetry), reg), reg
}

func TestAsk_NotConfigured(t *testing.T) {
	uc, reg := newTestUsecase(t, &stubRetriever{}, nil)

	_, err := uc.Ask(context.Background(), "q", nil)
	if !errors.Is(err, entity.ErrGenerationNotConfigured) {
		t.Fatalf("Ask() error = %v, want ErrGenerationNotConfigured", err)
	}
	if m := reg.Metrics(); m.TotalRagRequests != 0 || m.ErrorCount != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestAsk_InvalidQuery(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubRetriever{}, &spyGenerator{})

	if _, err := uc.Ask(context.Background(), " \n", nil); !errors.Is(err, entity.ErrInvalidQuery) {
		t.Errorf("Ask() error = %v, want ErrInvalidQuery", err)
	}
}

func TestAsk_CountsRequestsAndGenerationErrors(t *testing.T) {
	gen := &spyGenerator{err: &entity.ProviderError{Provider: "generation", Kind: entity.ProviderErrorAuth, Err: errors.New("401")}}
	uc, reg := newTestUsecase(t, &stubRetriever{hits: []entity.SearchHit{{ID: "a"}}}, gen)

	_, err := uc.Ask(context.Background(), "q", nil)

	var pe *entity.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Ask() error = %v, want ProviderError", err)
	}

	m := reg.Metrics()
	if m.TotalRagRequests != 1 || m.LastRagAt == nil {
		t.Errorf("rag counters = %+v", m)
	}
	if m.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", m.ErrorCount)
	}
	if gen.calls != 1 {
		t.Errorf("auth failure retried: %d calls", gen.calls)
	}
}

func TestAsk_RetrievalErrorNotDoubleCounted(t *testing.T) {
	uc, reg := newTestUsecase(t, &stubRetriever{err: errors.New("store down")}, &spyGenerator{})

	if _, err := uc.Ask(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error")
	}
	if reg.Metrics().ErrorCount != 0 {
		t.Errorf("ErrorCount = %d; the retriever owns retrieval error counting", reg.Metrics().ErrorCount)
	}
}

// promptSwapper changes the live settings while the request is in flight
type promptSwapper struct {
	reg *registry.Registry
	got entity.AdminSettings
}

func (p *promptSwapper) SearchWithSettings(ctx context.Context, query string, requestedTopK *int, settings entity.AdminSettings) ([]entity.SearchHit, error) {
	p.got = settings
	changed := "Changed mid-request."
	if _, err := p.reg.UpdateSettings(entity.SettingsUpdate{RagSystemPrompt: &changed}); err != nil {
		return nil, err
	}
	return []entity.SearchHit{{ID: "a", Content: "x"}}, nil
}

func TestAsk_UsesOneSettingsSnapshot(t *testing.T) {
	reg, err := registry.New(testSettings())
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	retriever := &promptSwapper{reg: reg}
	gen := &spyGenerator{reply: "ok"}
	uc := NewUsecase(retriever, NewComposer(gen, fastRetry), reg)

	if _, err := uc.Ask(context.Background(), "q", nil); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if retriever.got != testSettings() {
		t.Errorf("retrieval settings = %+v, want %+v", retriever.got, testSettings())
	}
	if !strings.HasPrefix(gen.messages[0].Content, "Be helpful.") {
		t.Errorf("system message built from a later snapshot: %q", gen.messages[0].Content)
	}
}
