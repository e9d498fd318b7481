package docstore

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	cosmosAPIVersion       = "2018-12-31"
	cosmosQueryContentType = "application/query+json"
	cosmosDocumentType     = "application/json"
)

// CosmosStore talks to Azure Cosmos DB's SQL API directly over REST with
// master-key auth. Each document carries the raw JSON value as a string so
// callers stay oblivious to the backend.
type CosmosStore struct {
	endpoint  *url.URL
	client    *http.Client
	key       string
	database  string
	container string
}

var _ Store = (*CosmosStore)(nil)

type cosmosDocument struct {
	ID        string `json:"id"`
	Partition string `json:"partition"`
	Value     string `json:"value"`
}

type cosmosQuery struct {
	Query      string                 `json:"query"`
	Parameters []cosmosQueryParameter `json:"parameters"`
}

type cosmosQueryParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type cosmosQueryResponse struct {
	Documents []cosmosDocument `json:"Documents"`
}

func NewCosmosStore(database, container string) (*CosmosStore, error) {
	endpoint, ok := os.LookupEnv("AZURE_COSMOS_ENDPOINT")
	if !ok {
		return nil, fmt.Errorf("AZURE_COSMOS_ENDPOINT could not be found")
	}
	key, ok := os.LookupEnv("AZURE_COSMOS_KEY")
	if !ok {
		return nil, fmt.Errorf("AZURE_COSMOS_KEY could not be found")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid AZURE_COSMOS_ENDPOINT: %w", err)
	}
	return &CosmosStore{
		endpoint:  parsed,
		client:    http.DefaultClient,
		key:       key,
		database:  database,
		container: container,
	}, nil
}

func (cs *CosmosStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	doc, err := cs.readDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(doc.Value)), nil
}

func (cs *CosmosStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := cs.readDocument(ctx, key)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (cs *CosmosStore) Put(ctx context.Context, key, value string, opts PutOptions) error {
	doc := cosmosDocument{ID: key, Partition: partitionKey(key), Value: value}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	resp, err := cs.doRequest(ctx, http.MethodPost, cs.documentsPath(), "docs", cs.documentsResourceID(), bytes.NewReader(body), func(req *http.Request) {
		req.Header.Set("Content-Type", cosmosDocumentType)
		if opts.Condition != PutIfNoneMatch {
			req.Header.Set("x-ms-documentdb-is-upsert", "true")
		}
		cs.setPartitionKeyHeader(req, doc.Partition)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if opts.Condition == PutIfNoneMatch && resp.StatusCode == http.StatusConflict {
		return ErrAlreadyExists
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return cs.decodeError(resp)
	}
	return nil
}

func (cs *CosmosStore) Delete(ctx context.Context, key string) error {
	resp, err := cs.doRequest(ctx, http.MethodDelete, cs.documentPath(key), "docs", cs.documentResourceID(key), nil, func(req *http.Request) {
		cs.setPartitionKeyHeader(req, partitionKey(key))
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return cs.decodeError(resp)
	}
	return nil
}

func (cs *CosmosStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := cosmosQuery{
		Query: "SELECT c.id FROM c WHERE STARTSWITH(c.id, @prefix)",
		Parameters: []cosmosQueryParameter{
			{Name: "@prefix", Value: prefix},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	resp, err := cs.doRequest(ctx, http.MethodPost, cs.documentsPath(), "docs", cs.documentsResourceID(), bytes.NewReader(body), func(req *http.Request) {
		req.Header.Set("Content-Type", cosmosQueryContentType)
		req.Header.Set("x-ms-documentdb-isquery", "true")
		req.Header.Set("x-ms-documentdb-query-enablecrosspartition", "true")
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, cs.decodeError(resp)
	}

	var parsed cosmosQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	keys := make([]string, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		keys = append(keys, strings.TrimPrefix(doc.ID, prefix))
	}
	return keys, nil
}

func (cs *CosmosStore) readDocument(ctx context.Context, key string) (*cosmosDocument, error) {
	resp, err := cs.doRequest(ctx, http.MethodGet, cs.documentPath(key), "docs", cs.documentResourceID(key), nil, func(req *http.Request) {
		cs.setPartitionKeyHeader(req, partitionKey(key))
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, cs.decodeError(resp)
	}

	var doc cosmosDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

func (cs *CosmosStore) documentsPath() string {
	return fmt.Sprintf("/dbs/%s/colls/%s/docs", cs.database, cs.container)
}

func (cs *CosmosStore) documentPath(key string) string {
	return fmt.Sprintf("/dbs/%s/colls/%s/docs/%s", cs.database, cs.container, url.PathEscape(key))
}

func (cs *CosmosStore) documentsResourceID() string {
	return fmt.Sprintf("dbs/%s/colls/%s", cs.database, cs.container)
}

func (cs *CosmosStore) documentResourceID(key string) string {
	return fmt.Sprintf("dbs/%s/colls/%s/docs/%s", cs.database, cs.container, key)
}

func (cs *CosmosStore) setPartitionKeyHeader(req *http.Request, partition string) {
	payload, _ := json.Marshal([]string{partition})
	req.Header.Set("x-ms-documentdb-partitionkey", string(payload))
}

func (cs *CosmosStore) doRequest(ctx context.Context, method, path, resourceType, resourceID string, body io.Reader, extraHeaders func(*http.Request)) (*http.Response, error) {
	reqURL := cs.endpoint.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	date := time.Now().UTC().Format(http.TimeFormat)
	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-version", cosmosAPIVersion)
	req.Header.Set("Authorization", cs.authHeader(method, resourceType, resourceID, date))
	if extraHeaders != nil {
		extraHeaders(req)
	}

	resp, err := cs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cosmos request failed: %w", err)
	}
	return resp, nil
}

func (cs *CosmosStore) authHeader(method, resourceType, resourceID, date string) string {
	payload := strings.ToLower(method) + "\n" +
		strings.ToLower(resourceType) + "\n" +
		resourceID + "\n" +
		strings.ToLower(date) + "\n\n"

	key, _ := base64.StdEncoding.DecodeString(cs.key)
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(payload))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return url.QueryEscape(fmt.Sprintf("type=master&ver=1.0&sig=%s", signature))
}

func (cs *CosmosStore) decodeError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cosmos error status %d", resp.StatusCode)
	}
	return fmt.Errorf("cosmos error status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
