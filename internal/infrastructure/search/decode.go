package search

import (
	"encoding/json"
	"io"

	"github.com/oksasatya/clubhub/internal/domain/entity"
)

func decodeHits(r io.Reader) ([]entity.PublicProfile, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string               `json:"_id"`
				Source entity.PublicProfile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.PublicProfile, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		p := h.Source
		if p.ID == "" {
			p.ID = h.ID
		}
		out = append(out, p)
	}
	return out, nil
}
