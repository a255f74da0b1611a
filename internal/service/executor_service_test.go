package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsage/server/internal/graphql"
	"github.com/graphsage/server/internal/models"
)

// countingServer is a GraphQL endpoint stub that records how many requests
// reached it and replies with a fixed body/status.
type countingServer struct {
	*httptest.Server
	hits int
}

func newCountingServer(t *testing.T, status int, body string) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(cs.Close)
	return cs
}

// recordingArchive satisfies KnowledgeService and records Ingest calls.
type recordingArchive struct {
	docs []string
	err  error
}

func (r *recordingArchive) Retrieve(context.Context, string, int) (string, []models.KnowledgeChunk, error) {
	return NoContextFound, nil, nil
}

func (r *recordingArchive) Ingest(_ context.Context, text string, _ map[string]string) error {
	r.docs = append(r.docs, text)
	return r.err
}

func newExecutor(srv *countingServer, archive KnowledgeService, allowMutations bool, maxWords int) Executor {
	gql := graphql.NewClient(srv.URL, "", 2*time.Second)
	return NewExecutorService(gql, archive, allowMutations, maxWords, 2*time.Second)
}

func TestExecuteMutationGuardNeverContactsEndpoint(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{}}`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `mutation { deleteRounds { affected_rows } }`, "")

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "mutations are not allowed")
	assert.Zero(t, srv.hits, "the guard must short-circuit before any HTTP call")
}

func TestExecuteMutationAllowedWhenEnabled(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{"insert_rounds":{"affected_rows":1}}}`)
	exec := newExecutor(srv, nil, true, 100)

	res := exec.Execute(context.Background(), `mutation { insert_rounds { affected_rows } }`, "")

	assert.True(t, res.Success)
	assert.Equal(t, 1, srv.hits)
}

func TestExecuteInvalidSyntaxFailsWithoutHTTP(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{}}`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `query { rounds {`, "")

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "invalid GraphQL syntax")
	assert.Zero(t, srv.hits)
}

func TestExecuteInvalidVariablesJSONFailsWithoutHTTP(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{}}`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `query Q($id: String!) { rounds(id: $id) { id } }`, `{"id": `)

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "invalid variables JSON")
	assert.Zero(t, srv.hits)
}

func TestExecuteNon2xxBecomesFailureResult(t *testing.T) {
	srv := newCountingServer(t, 500, `upstream exploded`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, "")

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "500")
}

func TestExecuteGraphQLErrorsBecomeFailureResult(t *testing.T) {
	srv := newCountingServer(t, 200,
		`{"data":{"rounds":null},"errors":[{"message":"Cannot query field foo","path":["rounds"]}]}`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { foo } }`, "")

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	// Raw error objects survive serialized, full detail intact.
	assert.Contains(t, res.Errors[0], "Cannot query field foo")
	assert.Contains(t, res.Errors[0], `"path"`)
	// Partial data rides along with the failure.
	assert.Contains(t, res.Data, "rounds")
}

func TestExecuteSuccessReturnsData(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{"rounds":[{"id":"865"}]}}`)
	exec := newExecutor(srv, nil, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, "")

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Data, `"865"`)
}

func TestExecuteTimeoutIsDistinguishable(t *testing.T) {
	srv := &countingServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	gql := graphql.NewClient(srv.URL, "", 50*time.Millisecond)
	exec := NewExecutorService(gql, nil, false, 100, 50*time.Millisecond)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, "")

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "timed out")
}

func TestExecuteArchivesSuccessfulQueries(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{"rounds":[{"id":"865"}]}}`)
	archive := &recordingArchive{}
	exec := newExecutor(srv, archive, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, `{}`)

	require.True(t, res.Success)
	require.Len(t, archive.docs, 1)
	assert.Contains(t, archive.docs[0], "<query>")
	assert.Contains(t, archive.docs[0], "<result>")
	assert.Contains(t, archive.docs[0], `"865"`)
}

func TestExecuteArchiveFailureDoesNotAffectResult(t *testing.T) {
	srv := newCountingServer(t, 200, `{"data":{"ok":true}}`)
	archive := &recordingArchive{err: assert.AnError}
	exec := newExecutor(srv, archive, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, "")

	assert.True(t, res.Success, "archive failure is logged, never surfaced")
}

func TestExecuteNoArchiveOnFailure(t *testing.T) {
	srv := newCountingServer(t, 200, `{"errors":[{"message":"nope"}]}`)
	archive := &recordingArchive{}
	exec := newExecutor(srv, archive, false, 100)

	res := exec.Execute(context.Background(), `{ rounds { id } }`, "")

	assert.False(t, res.Success)
	assert.Empty(t, archive.docs)
}

func TestTruncateWordsBoundary(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = "w"
	}
	long := strings.Join(words, " ")

	out := truncateWords(long, 10)
	require.True(t, strings.HasSuffix(out, TruncationMarker))
	kept := strings.TrimSpace(strings.TrimSuffix(out, TruncationMarker))
	assert.Len(t, strings.Fields(kept), 10, "exactly the first 10 words survive")
	assert.LessOrEqual(t, len(out), len(strings.Join(words[:10], " "))+1+len(TruncationMarker))
}

func TestTruncateWordsNoOpUnderCeiling(t *testing.T) {
	s := "one two three"
	assert.Equal(t, s, truncateWords(s, 10))
	assert.Equal(t, s, truncateWords(s, 3))
}

func TestTruncateWordsIdempotent(t *testing.T) {
	long := strings.Repeat("word ", 50)
	once := truncateWords(long, 10)
	twice := truncateWords(once, 10)
	assert.Equal(t, once, twice)
}
