package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clubhub/internal/domain/entity"
)

// fakeES answers like an Elasticsearch 8 node for the two calls the indexer makes.
func fakeES(t *testing.T, indexed *[]map[string]any) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/_doc/"):
			var doc map[string]any
			b, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(b, &doc))
			*indexed = append(*indexed, doc)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"u1","_source":{"id":"u1","username":"alice","email":"a@x.com","role":"member"}}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestUserIndexer_IndexNeverSendsDigest(t *testing.T) {
	var indexed []map[string]any
	x := NewUserIndexer(fakeES(t, &indexed), "members")

	u := &entity.User{ID: "u1", Username: "alice", Email: "a@x.com", PasswordHash: "$2a$secret", Role: entity.RoleMember}
	require.NoError(t, x.IndexUser(context.Background(), u))

	require.Len(t, indexed, 1)
	assert.Equal(t, "alice", indexed[0]["username"])
	for k, v := range indexed[0] {
		assert.NotContains(t, strings.ToLower(k), "password")
		assert.NotEqual(t, "$2a$secret", v)
	}
}

func TestUserIndexer_Search(t *testing.T) {
	var indexed []map[string]any
	x := NewUserIndexer(fakeES(t, &indexed), "members")

	hits, err := x.SearchUsers(context.Background(), "ali", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alice", hits[0].Username)
	assert.Equal(t, entity.RoleMember, hits[0].Role)
}

func TestSearchQuery_ClampsSize(t *testing.T) {
	assert.Equal(t, 10, SearchQuery("x", 0)["size"])
	assert.Equal(t, 10, SearchQuery("x", 500)["size"])
	assert.Equal(t, 25, SearchQuery("x", 25)["size"])
}
