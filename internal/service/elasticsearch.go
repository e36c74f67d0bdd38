package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchDocs searches a knowledge-base index. Documents are expected to
// carry "title", "body", "category" and optionally "url" fields.
type ElasticsearchDocs struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchDocs creates an ES client using go-elasticsearch/v8
func NewElasticsearchDocs(scheme, host string, port int, user, password string, verifyCerts bool, maxRetries int, index string) (*ElasticsearchDocs, error) {
	addr := fmt.Sprintf("%s://%s:%d", scheme, host, port)

	cfg := elasticsearch.Config{
		Addresses:  []string{addr},
		MaxRetries: maxRetries,
	}
	if user != "" {
		cfg.Username = user
		cfg.Password = password
	}

	if !verifyCerts {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	return &ElasticsearchDocs{client: client, index: index}, nil
}

// TestConnection pings the cluster
func (s *ElasticsearchDocs) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// Search runs a category-filtered full-text query against the docs index
func (s *ElasticsearchDocs) Search(ctx context.Context, category models.Category, query string, limit int) ([]Doc, error) {
	if limit <= 0 {
		limit = 3
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "body"},
					},
				},
				"filter": map[string]interface{}{
					"match": map[string]interface{}{"category": string(category)},
				},
			},
		},
		"_source": []string{"title", "body", "url"},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	}

	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()

	raw, err := decodeBody(res.Body, res.Status())
	if err != nil {
		return nil, err
	}
	return parseDocHits(raw), nil
}

func decodeBody(r io.Reader, status string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if errObj, ok := result["error"]; ok {
			return nil, fmt.Errorf("elasticsearch error [%s]: %v", status, errObj)
		}
		return nil, fmt.Errorf("elasticsearch error: %s", status)
	}
	return result, nil
}

func parseDocHits(raw map[string]interface{}) []Doc {
	var docs []Doc
	hitsObj, ok := raw["hits"].(map[string]interface{})
	if !ok {
		return nil
	}
	hits, ok := hitsObj["hits"].([]interface{})
	if !ok {
		return nil
	}
	for _, h := range hits {
		hm, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		src, ok := hm["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := src["title"].(string)
		body, _ := src["body"].(string)
		url, _ := src["url"].(string)
		if title == "" {
			title, _ = hm["_id"].(string)
		}
		docs = append(docs, Doc{Title: title, Body: body, URL: url})
	}
	return docs
}
