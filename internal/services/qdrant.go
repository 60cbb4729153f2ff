package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

const payloadContent = "content"

// NewQdrantClient connects over gRPC. The URL port is used when present,
// otherwise Qdrant's gRPC default 6334.
func NewQdrantClient(urlStr, apiKey string) (*qdrant.Client, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return client, nil
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

// NewQdrantIndex stores one candidate kind per collection.
func NewQdrantIndex(client *qdrant.Client, collectionName string, vectorSize int, log *zap.Logger) VectorIndex {
	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     uint64(vectorSize),
		log:            logger.OrNop(log).With(zap.String("collection", collectionName)),
	}
}

// Init implements VectorIndex.
func (q *qdrantIndex) Init(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("✅ Qdrant collection created")
	return nil
}

// Upsert implements VectorIndex. Point IDs are derived from the candidate ID
// so re-indexing a candidate overwrites its previous point.
func (q *qdrantIndex) Upsert(ctx context.Context, candidate models.Candidate, vector []float32) error {
	meta := candidate.Metadata()
	meta[payloadContent] = candidate.Content

	payload, err := qdrant.TryValueMap(meta)
	if err != nil {
		return fmt.Errorf("failed to build payload: %w", err)
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(pointID(candidate.ID)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search implements VectorIndex.
func (q *qdrantIndex) Search(ctx context.Context, vector []float32, limit int, filter *models.MetadataFilter) ([]models.SimilarityResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         searchFilter(filter),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.SimilarityResult, 0, len(points))
	for _, point := range points {
		meta := payloadToMap(point.GetPayload())
		content, _ := meta[payloadContent].(string)
		results = append(results, models.SimilarityResult{
			Candidate:  models.CandidateFromMetadata(content, meta),
			Similarity: float64(point.GetScore()),
		})
	}

	return results, nil
}

// Delete implements VectorIndex.
func (q *qdrantIndex) Delete(ctx context.Context, candidateID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(models.MetaCandidateID, candidateID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	return nil
}

// Count implements VectorIndex.
func (q *qdrantIndex) Count(ctx context.Context) (int, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// searchFilter turns a metadata filter into a Qdrant condition. Filter values
// arrive as text, but numeric metadata such as tier is stored as an integer
// payload, which a keyword match never hits. Numeric-looking values therefore
// match either representation.
func searchFilter(filter *models.MetadataFilter) *qdrant.Filter {
	if filter == nil || strings.TrimSpace(filter.Key) == "" {
		return nil
	}

	cond := qdrant.NewMatch(filter.Key, filter.Value)
	if n, err := strconv.ParseInt(strings.TrimSpace(filter.Value), 10, 64); err == nil {
		cond = qdrant.NewFilterAsCondition(&qdrant.Filter{
			Should: []*qdrant.Condition{
				qdrant.NewMatchInt(filter.Key, n),
				qdrant.NewMatch(filter.Key, filter.Value),
			},
		})
	}

	return &qdrant.Filter{Must: []*qdrant.Condition{cond}}
}

func pointID(candidateID string) string {
	if id, err := uuid.Parse(candidateID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(candidateID)).String()
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = valueToAny(value)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, 0, len(items))
		for _, item := range items {
			list = append(list, valueToAny(item))
		}
		return list
	case *qdrant.Value_StructValue:
		return payloadToMap(kind.StructValue.GetFields())
	default:
		return nil
	}
}
