// Package qdrant provides a DocumentStore implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb"
)

// Payload keys besides the metadata fields.
const (
	payloadPageContent = "page_content"
	payloadNamespace   = "namespace"
)

// pollInterval is the delay between collection readiness checks.
var pollInterval = 500 * time.Millisecond

// Repository implements the DocumentStore and IndexManager interfaces using
// Qdrant. All points live in one collection and are scoped by a namespace
// payload field.
type Repository struct {
	client       pb.CollectionsClient
	points       pb.PointsClient
	collection   string
	namespace    string
	readyTimeout time.Duration
	conn         *grpc.ClientConn
	logger       *zap.Logger
}

// Ensure Repository implements the store ports.
var (
	_ ports.DocumentStore = (*Repository)(nil)
	_ ports.IndexManager  = (*Repository)(nil)
)

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig, store config.VectorStoreConfig, logger *zap.Logger) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return newRepository(conn, store, logger), nil
}

func newRepository(conn *grpc.ClientConn, store config.VectorStoreConfig, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		client:       pb.NewCollectionsClient(conn),
		points:       pb.NewPointsClient(conn),
		collection:   store.Index,
		namespace:    store.Namespace,
		readyTimeout: store.ReadyTimeout(),
		conn:         conn,
		logger:       logger,
	}
}

// apiKeyInterceptor attaches the Qdrant Cloud api-key header to every call.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureIndex creates the collection if it doesn't exist and waits until it
// reports ready.
func (r *Repository) EnsureIndex(ctx context.Context, dimensions uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return mapError("getting collection info", err)
	}

	r.logger.Info("creating collection",
		zap.String("collection", r.collection),
		zap.Uint64("dimensions", dimensions))

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     dimensions,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return mapError("creating collection", err)
	}

	for _, field := range append([]string{payloadNamespace}, entities.FilterableFields...) {
		_, err := r.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
			CollectionName: r.collection,
			FieldName:      field,
			FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
			Wait:           pb.PtrOf(true),
		})
		if err != nil {
			return mapError("creating payload index "+field, err)
		}
	}

	return r.waitReady(ctx)
}

// waitReady polls the collection status until it is green or the ready
// timeout elapses.
func (r *Repository) waitReady(ctx context.Context) error {
	timeout := r.readyTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
			CollectionName: r.collection,
		})
		if err == nil && resp.GetResult().GetStatus() == pb.CollectionStatus_Green {
			return nil
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return mapError("waiting for collection", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: collection %s not ready after %s", ports.ErrStoreUnavailable, r.collection, timeout)
		case <-ticker.C:
		}
	}
}

// DeleteIndex removes the collection.
func (r *Repository) DeleteIndex(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return mapError("deleting collection", err)
	}
	return nil
}

// SaveBatch upserts documents. Point ids are derived from the namespace and
// page content.
func (r *Repository) SaveBatch(ctx context.Context, docs []entities.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: vectordb.PointID(r.namespace, doc.PageContent),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: doc.Embedding,
					},
				},
			},
			Payload: documentToPayload(doc.Document, r.namespace),
		})
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return mapError("upserting points", err)
	}

	return nil
}

// Search performs a filtered semantic search within the namespace.
func (r *Repository) Search(ctx context.Context, embedding []float32, filter entities.Filter, limit int) ([]entities.RetrievedDocument, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         buildFilter(r.namespace, filter),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, mapError("searching points", err)
	}

	docs := make([]entities.RetrievedDocument, 0, len(resp.Result))
	for _, point := range resp.Result {
		docs = append(docs, entities.RetrievedDocument{
			Document: payloadToDocument(point.Payload),
			Score:    point.Score,
		})
	}

	return docs, nil
}

// Count returns the number of documents in the namespace.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.points.Count(ctx, &pb.CountPoints{
		CollectionName: r.collection,
		Filter:         buildFilter(r.namespace, entities.Filter{}),
		Exact:          pb.PtrOf(true),
	})
	if err != nil {
		return 0, mapError("counting points", err)
	}

	return resp.GetResult().GetCount(), nil
}

// buildFilter turns the namespace and filter conditions into Qdrant Must
// keyword matches.
func buildFilter(namespace string, filter entities.Filter) *pb.Filter {
	conds := filter.Conditions()
	must := make([]*pb.Condition, 0, len(conds)+1)
	must = append(must, keywordCondition(payloadNamespace, namespace))
	for _, field := range entities.FilterableFields {
		if value, ok := conds[field]; ok {
			must = append(must, keywordCondition(field, value))
		}
	}
	return &pb.Filter{Must: must}
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{
						Keyword: value,
					},
				},
			},
		},
	}
}

// documentToPayload flattens a document into Qdrant payload values.
func documentToPayload(doc entities.Document, namespace string) map[string]*pb.Value {
	fields := doc.Metadata.Fields()
	payload := make(map[string]*pb.Value, len(fields)+2)
	for key, value := range fields {
		payload[key] = stringValue(value)
	}
	payload[payloadPageContent] = stringValue(doc.PageContent)
	payload[payloadNamespace] = stringValue(namespace)
	return payload
}

// payloadToDocument rebuilds a document from Qdrant payload values.
func payloadToDocument(payload map[string]*pb.Value) entities.Document {
	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		if key == payloadPageContent || key == payloadNamespace {
			continue
		}
		fields[key] = value.GetStringValue()
	}
	return entities.Document{
		PageContent: getStringValue(payload, payloadPageContent),
		Metadata:    entities.MetadataFromFields(fields),
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// mapError translates gRPC status codes into the store sentinel errors.
func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s: %v", ports.ErrIndexNotFound, op, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s: %v", ports.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
