package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/naka-gawa/github-search/internal/gateway"
	"github.com/stretchr/testify/mock"
)

// mockSearcher is a mock implementation of the gateway.Searcher interface.
type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchCode(ctx context.Context, query domain.SearchQuery) (gateway.ResultPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gateway.ResultPage), args.Error(1)
}

func (m *mockSearcher) Repository(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepositoryMetadata), args.Error(1)
}

// mockPage is a mock implementation of gateway.ResultPage.
type mockPage struct {
	mock.Mock
}

func (m *mockPage) Total() int {
	return m.Called().Int(0)
}

func (m *mockPage) Entry(ctx context.Context, index int) (domain.ResultEntry, error) {
	args := m.Called(ctx, index)
	return args.Get(0).(domain.ResultEntry), args.Error(1)
}

// delayRecorder is a zero-duration DelayStrategy that remembers what was asked.
type delayRecorder struct {
	mu    sync.Mutex
	calls []DelayContext
}

func (r *delayRecorder) strategy(c DelayContext) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return 0
}

func (r *delayRecorder) kinds() []DelayKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]DelayKind, 0, len(r.calls))
	for _, c := range r.calls {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// progressRecorder records Progress calls.
type progressRecorder struct {
	keyword  string
	total    int
	advanced int
	finished bool
	err      error
}

func (p *progressRecorder) Start(keyword string, total int) { p.keyword, p.total = keyword, total }
func (p *progressRecorder) Advance()                        { p.advanced++ }
func (p *progressRecorder) Finish(err error)                { p.finished, p.err = true, err }

func entry(i int, name string) domain.ResultEntry {
	return domain.ResultEntry{
		URL:        "https://github.com/" + name + "/blob/main/x.py",
		Repository: domain.RepositoryRef{ID: int64(i + 1), FullName: name},
	}
}
