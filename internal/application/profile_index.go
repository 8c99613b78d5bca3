package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
)

// ProfileDocument is the searchable projection of a user.
type ProfileDocument struct {
	ID         string      `json:"id"`
	Role       entity.Role `json:"role"`
	Name       string      `json:"name"`
	Lastname   string      `json:"lastname"`
	Patronymic string      `json:"patronymic"`
	Avatar     *string     `json:"avatar"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func documentOf(u *entity.User) ProfileDocument {
	return ProfileDocument{
		ID:         u.ID,
		Role:       u.Role,
		Name:       u.Name,
		Lastname:   u.Lastname,
		Patronymic: u.Patronymic,
		Avatar:     u.Avatar,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ProfileIndex mirrors profiles into Elasticsearch. Index writes are best
// effort; a nil index is a no-op and searches return nothing.
type ProfileIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewProfileIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProfileIndex {
	if es == nil || index == "" {
		return nil
	}
	return &ProfileIndex{ES: es, Index: index, Logger: orNop(logger)}
}

func (x *ProfileIndex) Put(ctx context.Context, u *entity.User) {
	if x == nil || u == nil {
		return
	}
	b, _ := json.Marshal(documentOf(u))
	req := esapi.IndexRequest{Index: x.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		x.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (x *ProfileIndex) Remove(ctx context.Context, userID string) {
	if x == nil {
		return
	}
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.Logger.WithError(err).WithField("user_id", userID).Warn("es delete failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		x.Logger.WithField("status", res.Status()).WithField("user_id", userID).Warn("es delete response error")
	}
}

// Search runs a multi_match over the name fields.
func (x *ProfileIndex) Search(ctx context.Context, q string, size int) ([]ProfileDocument, error) {
	if x == nil {
		return []ProfileDocument{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"lastname^2", "name", "patronymic"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

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

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source ProfileDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]ProfileDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
