// Package search keeps the member directory in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

// Mapping for the members index. The digest is never indexed.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "username":   {"type": "keyword"},
      "email":      {"type": "keyword"},
      "firstName":  {"type": "text"},
      "lastName":   {"type": "text"},
      "role":       {"type": "keyword"},
      "department": {"type": "text"},
      "studentId":  {"type": "keyword"},
      "year":       {"type": "keyword"},
      "isActive":   {"type": "boolean"},
      "createdAt":  {"type": "date"},
      "updatedAt":  {"type": "date"}
    }
  }
}`

type UserIndexer struct {
	ES    *elasticsearch.Client
	Index string
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{ES: es, Index: index}
}

// EnsureIndex creates the members index if needed.
func (x *UserIndexer) EnsureIndex(ctx context.Context) error {
	return helpers.EnsureESIndex(ctx, x.ES, x.Index, Mapping)
}

// Document is what gets stored per member.
func Document(u *entity.User) entity.PublicProfile {
	p := u.Public()
	p.LastLogin = nil
	return p
}

func (x *UserIndexer) IndexUser(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(Document(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", u.ID, res.Status())
	}
	return nil
}

// SearchQuery builds a multi_match over the directory fields.
func SearchQuery(q string, size int) map[string]any {
	if size <= 0 || size > 50 {
		size = 10
	}
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^3", "email^2", "firstName", "lastName", "department"},
			},
		},
		"size": size,
	}
}

func (x *UserIndexer) SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicProfile, error) {
	b, err := json.Marshal(SearchQuery(q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}
	return decodeHits(res.Body)
}
