package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, backend string, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		backend:       backend,
		logger:        log.New(io.Discard),
	}
	return gateway, server
}

// codeSearchBody renders a search/code response with n items starting at offset.
func codeSearchBody(total, offset, n int) string {
	items := make([]string, 0, n)
	for i := offset; i < offset+n; i++ {
		items = append(items, fmt.Sprintf(
			`{"html_url":"https://github.com/org/repo-%d/blob/main/f.py","repository":{"id":%d,"full_name":"org/repo-%d"}}`,
			i, 1000+i, i))
	}
	return fmt.Sprintf(`{"total_count":%d,"incomplete_results":false,"items":[%s]}`, total, strings.Join(items, ","))
}

func TestGitHubGateway_SearchCode(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectedTotal  int
		expectedFirst  domain.ResultEntry
		expectError    bool
		expectRateErr  bool
		expectedErrMsg string
	}{
		{
			name: "happy path - first page is loaded eagerly",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/search/code")
				assert.Equal(t, "partial( NOT is:fork", r.URL.Query().Get("q"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, codeSearchBody(2, 0, 2))
			},
			expectedTotal: 2,
			expectedFirst: domain.ResultEntry{
				URL:        "https://github.com/org/repo-0/blob/main/f.py",
				Repository: domain.RepositoryRef{ID: 1000, FullName: "org/repo-0"},
			},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to search code with REST API",
		},
		{
			name: "rate limit case - primary limit exhausted",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Limit", "30")
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			},
			expectError:    true,
			expectRateErr:  true,
			expectedErrMsg: "failed to search code with REST API",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, BackendREST, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			page, err := gateway.SearchCode(context.Background(), "partial( NOT is:fork")
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				assert.Equal(t, tc.expectRateErr, IsRateLimited(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, page.Total())
			entry, err := page.Entry(context.Background(), 0)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedFirst, entry)
		})
	}
}

func TestCodeResultPage_EntryPaging(t *testing.T) {
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		w.WriteHeader(http.StatusOK)
		switch page {
		case 1:
			fmt.Fprint(w, codeSearchBody(150, 0, 100))
		case 2:
			fmt.Fprint(w, codeSearchBody(150, 100, 40))
		default:
			t.Errorf("unexpected page %d", page)
		}
	}
	gateway, server := setupTestGateway(t, BackendREST, http.HandlerFunc(handler))
	defer server.Close()
	ctx := context.Background()

	page, err := gateway.SearchCode(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, 150, page.Total())

	entry, err := page.Entry(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "org/repo-99", entry.Repository.FullName)
	assert.Equal(t, 1, requests)

	entry, err = page.Entry(ctx, 120)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/org/repo-120/blob/main/f.py", entry.URL)
	assert.Equal(t, int64(1120), entry.Repository.ID)
	assert.Equal(t, 2, requests)

	// GitHub served fewer items than total_count promised.
	_, err = page.Entry(ctx, 145)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not served by GitHub")

	_, err = page.Entry(ctx, 150)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestGitHubGateway_Repository(t *testing.T) {
	testCases := []struct {
		name           string
		backend        string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       *domain.RepositoryMetadata
		expectError    bool
		expectRateErr  bool
		expectedErrMsg string
	}{
		{
			name:    "REST - happy path",
			backend: BackendREST,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repositories/42", r.URL.Path)
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"id":42,"full_name":"org/repo-a","stargazers_count":150}`)
			},
			expected: &domain.RepositoryMetadata{FullName: "org/repo-a", Stars: 150},
		},
		{
			name:    "REST - primary rate limit",
			backend: BackendREST,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			},
			expectError:    true,
			expectRateErr:  true,
			expectedErrMsg: "failed to get repository 42 with REST API",
		},
		{
			name:    "REST - secondary rate limit",
			backend: BackendREST,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit.", "documentation_url": "https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`)
			},
			expectError:    true,
			expectRateErr:  true,
			expectedErrMsg: "failed to get repository 42 with REST API",
		},
		{
			name:    "REST - not found is not a rate limit",
			backend: BackendREST,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to get repository 42 with REST API",
		},
		{
			name:    "GraphQL - happy path",
			backend: BackendGraphQL,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "repository(owner: $owner, name: $name)")
				assert.Contains(t, string(body), `"owner":"org"`)
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"data":{"repository":{"nameWithOwner":"org/repo-a","stargazerCount":7}}}`)
			},
			expected: &domain.RepositoryMetadata{FullName: "org/repo-a", Stars: 7},
		},
		{
			name:    "GraphQL - rate limited",
			backend: BackendGraphQL,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"errors":[{"type":"RATE_LIMITED","message":"API rate limit exceeded for user ID 1."}]}`)
			},
			expectError:    true,
			expectRateErr:  true,
			expectedErrMsg: "failed to execute GraphQL query",
		},
		{
			name:    "GraphQL - other error",
			backend: BackendGraphQL,
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"errors":[{"message":"Something went wrong"}]}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, tc.backend, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			md, err := gateway.Repository(context.Background(), domain.RepositoryRef{ID: 42, FullName: "org/repo-a"})
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				assert.Equal(t, tc.expectRateErr, IsRateLimited(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, md)
		})
	}
}

func TestGitHubGateway_RepositoryGraphQLInvalidName(t *testing.T) {
	gateway, server := setupTestGateway(t, BackendGraphQL, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	_, err := gateway.Repository(context.Background(), domain.RepositoryRef{ID: 1, FullName: "no-slash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository name")
}

func TestNewGitHubGateway(t *testing.T) {
	logger := log.New(io.Discard)

	_, err := NewGitHubGateway("token", Options{MetadataBackend: "soap"}, logger)
	assert.ErrorContains(t, err, "unknown metadata backend")

	s, err := NewGitHubGateway("token", Options{BaseURL: "https://ghe.example.com/api/v3/"}, logger)
	require.NoError(t, err)
	g := s.(*GitHubGateway)
	assert.Equal(t, BackendREST, g.backend)
	assert.Equal(t, "https://ghe.example.com/api/v3/", g.restClient.BaseURL.String())
}

func TestGraphqlEndpoint(t *testing.T) {
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlEndpoint("https://ghe.example.com/api/v3/"))
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlEndpoint("https://ghe.example.com/api/v3"))
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlEndpoint("https://ghe.example.com/"))
}
