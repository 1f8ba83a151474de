// Package search builds the denormalized tool search index: a JSON
// payload for the client-side search UI and an Elasticsearch index for
// the ops search stack.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
)

// ToolLister provides the published tools to index.
type ToolLister interface {
	ListPublished(ctx context.Context) ([]domain.Tool, error)
}

// Payload is the denormalized search index served to the client.
type Payload struct {
	Tools       []domain.SearchDocument `json:"tools"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// BuildPayload flattens tools into the search payload.
func BuildPayload(tools []domain.Tool) *Payload {
	docs := make([]domain.SearchDocument, 0, len(tools))
	for i := range tools {
		docs = append(docs, tools[i].SearchDoc())
	}
	return &Payload{
		Tools:       docs,
		GeneratedAt: time.Now().UTC(),
	}
}

// Indexer bulk-writes search documents into Elasticsearch.
type Indexer struct {
	client *es.Client
	index  string
	tools  ToolLister
	logger logger.Logger
}

// NewIndexer creates an Indexer for the given index name.
func NewIndexer(client *es.Client, index string, tools ToolLister, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		tools:  tools,
		logger: log,
	}
}

// NewClient creates an Elasticsearch client and pings it. A failed ping
// is reported but does not fail startup; the index is a secondary
// consumer and requests never depend on it.
func NewClient(url string, log logger.Logger) (*es.Client, error) {
	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		log.Warn("Elasticsearch unreachable, indexing degraded",
			logger.String("url", url),
			logger.Error(err),
		)
		return client, nil
	}
	defer func() { _ = res.Body.Close() }()

	log.Info("Elasticsearch connection established", logger.String("url", url))
	return client, nil
}

// Reindex rebuilds the search index from the published catalog.
func (ix *Indexer) Reindex(ctx context.Context) error {
	tools, err := ix.tools.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published tools: %w", err)
	}
	if len(tools) == 0 {
		ix.logger.Debug("No published tools to index")
		return nil
	}

	body, err := bulkBody(ix.index, tools)
	if err != nil {
		return err
	}

	res, err := ix.client.Bulk(
		bytes.NewReader(body),
		ix.client.Bulk.WithContext(ctx),
		ix.client.Bulk.WithIndex(ix.index),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("bulk index returned error: %s", res.Status())
	}

	ix.logger.Info("Search index rebuilt",
		logger.String("index", ix.index),
		logger.Int("documents", len(tools)),
	)
	return nil
}

// bulkBody encodes the NDJSON action/document pairs for a bulk request.
func bulkBody(index string, tools []domain.Tool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i := range tools {
		doc := tools[i].SearchDoc()

		action := map[string]map[string]string{
			"index": {"_index": index, "_id": doc.ID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode search document: %w", err)
		}
	}
	return buf.Bytes(), nil
}
