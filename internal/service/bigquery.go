package service

import (
	"context"
	"fmt"
	"regexp"

	"cloud.google.com/go/bigquery"
	"github.com/agentdesk/agentdesk/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var tableRefRe = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\.[A-Za-z0-9_\-]+){1,2}$`)

// BigQueryDocs searches a documentation table with columns
// category, title, body and url.
type BigQueryDocs struct {
	client   *bigquery.Client
	table    string
	location string
}

// NewBigQueryDocs creates a BigQuery client for the docs table ("dataset.table"
// or "project.dataset.table")
func NewBigQueryDocs(ctx context.Context, projectID, credentialsFile, location, table string) (*BigQueryDocs, error) {
	if !tableRefRe.MatchString(table) {
		return nil, fmt.Errorf("invalid bigquery table reference %q", table)
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}

	return &BigQueryDocs{
		client:   client,
		table:    table,
		location: location,
	}, nil
}

// Close releases the BigQuery client
func (s *BigQueryDocs) Close() error {
	return s.client.Close()
}

// TestConnection verifies BigQuery connectivity
func (s *BigQueryDocs) TestConnection(ctx context.Context) error {
	q := s.client.Query("SELECT 1")
	q.Location = s.location
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("job wait: %w", err)
	}
	return status.Err()
}

type docRow struct {
	Title bigquery.NullString `bigquery:"title"`
	Body  bigquery.NullString `bigquery:"body"`
	URL   bigquery.NullString `bigquery:"url"`
}

// Search finds rows in the category whose title or body mention a query term
func (s *BigQueryDocs) Search(ctx context.Context, category models.Category, query string, limit int) ([]Doc, error) {
	if limit <= 0 {
		limit = 3
	}

	sql := fmt.Sprintf("SELECT title, body, url FROM `%s` "+
		"WHERE category = @category "+
		"AND (REGEXP_CONTAINS(LOWER(title), @pattern) OR REGEXP_CONTAINS(LOWER(body), @pattern)) "+
		"LIMIT @limit", s.table)

	q := s.client.Query(sql)
	q.Location = s.location
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category", Value: string(category)},
		{Name: "pattern", Value: termPattern(query)},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query docs: %w", err)
	}

	var docs []Doc
	for {
		var row docRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		docs = append(docs, Doc{
			Title: row.Title.StringVal,
			Body:  row.Body.StringVal,
			URL:   row.URL.StringVal,
		})
	}
	return docs, nil
}
