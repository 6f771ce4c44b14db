// Package storage persists (vector, text, metadata) tuples and answers
// nearest-neighbor queries. The qdrant backend is the production store; an
// in-memory implementation with the same contract lives in
// storage/memstore.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/docchat/docchat/internal/domain"
)

// pointNamespace seeds deterministic UUIDv5 point IDs. Qdrant only accepts
// UUID or integer point IDs, so the stable "sourceId#offset" key is hashed
// into a UUID; determinism is what makes re-ingestion idempotent.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("docchat.chunks"))

// PointID maps a stable chunk key to its qdrant point UUID.
func PointID(key string) string {
	return uuid.NewSHA1(pointNamespace, []byte(key)).String()
}

// QdrantStore wraps the qdrant client with connection management and
// health checks. One store is created at startup and closed at shutdown.
type QdrantStore struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewQdrantStore creates a qdrant client and validates connectivity with a
// retried health check, failing fast when the server is unreachable.
func NewQdrantStore(host string, port int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &QdrantStore{
		client: client,
		host:   host,
		port:   port,
	}

	ctx := context.Background()
	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry retries the health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		return s.Health(ctx)
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against qdrant.
func (s *QdrantStore) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}

	return nil
}

// EnsureCollection creates the chunks collection when absent: 1536-dim
// vectors with cosine distance, plus a payload index on source_id.
// Idempotent.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     VectorDimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Index source_id so per-source filtering stays fast as the corpus grows.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "source_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create source_id index: %w", err)
	}

	return nil
}

// ClearCollection drops and recreates the collection. Used before a full
// re-index.
func (s *QdrantStore) ClearCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, CollectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	return s.EnsureCollection(ctx)
}

// Close closes the qdrant client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// upsertWithRetry performs one upsert call with exponential backoff.
func (s *QdrantStore) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// Upsert stores indexed vectors, batched in groups of 100. Point identity
// derives from each vector's stable ID, so re-upserting the same keys
// overwrites rather than duplicates.
func (s *QdrantStore) Upsert(ctx context.Context, vectors []IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}

	for i, v := range vectors {
		if len(v.Embedding) != VectorDimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v.Embedding), VectorDimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(vectors); i += batchSize {
		end := min(i+batchSize, len(vectors))

		batch := vectors[i:end]
		points := make([]*qdrant.PointStruct, len(batch))

		for j, v := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(PointID(v.ID)),
				Vectors: qdrant.NewVectors(v.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"key":       v.ID,
					"text":      v.Text,
					"source_id": v.SourceID,
					"title":     v.Title,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// Query runs a nearest-neighbor search and returns up to topK hits in the
// store's score order (descending similarity). A sparse index returning
// fewer hits is not an error.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) (domain.RetrievalResult, error) {
	if len(vector) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), VectorDimension)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	hits := make(domain.RetrievalResult, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		hits = append(hits, domain.ScoredChunk{
			Text:     payload["text"].GetStringValue(),
			SourceID: payload["source_id"].GetStringValue(),
			Score:    float64(result.Score),
		})
	}

	return hits, nil
}

// Count returns the number of indexed vectors in the collection.
func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	collection, err := s.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection: %w", err)
	}

	return collection.GetPointsCount(), nil
}
