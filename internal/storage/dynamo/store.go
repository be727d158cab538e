package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ErrInvalidSubmission is returned for a submission that cannot be stored.
var ErrInvalidSubmission = errors.New("invalid submission")

// API is the subset of the DynamoDB client used by the store.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type recordItem struct {
	Checklist   map[string]bool  `dynamodbav:"tarefas_concluidas"`
	ID          string           `dynamodbav:"id"`
	Number      string           `dynamodbav:"numero_proposta"`
	Analyst     string           `dynamodbav:"analista"`
	TypeLabel   string           `dynamodbav:"tipo_proposta"`
	Type        string           `dynamodbav:"proposal_type"`
	Status      string           `dynamodbav:"status"`
	CreatedAt   string           `dynamodbav:"data_criacao"`
	ConcludedAt string           `dynamodbav:"data_conclusao"`
	Duration    string           `dynamodbav:"duracao_total"`
	Timestamp   string           `dynamodbav:"timestamp"`
	Filters     model.FilterData `dynamodbav:"dados_filtro"`
}

// Store implements service.ProposalStore on DynamoDB.
type Store struct {
	api    API
	prefix string
	now    func() time.Time
}

var _ service.ProposalStore = (*Store)(nil)

// NewStore creates a store. Table names are prefix + the logical store name of each type.
func NewStore(api API, prefix string) *Store {
	return &Store{api: api, prefix: prefix, now: time.Now}
}

// TableName returns the table holding records of type t.
func (s *Store) TableName(t model.ProposalType) string {
	return s.prefix + t.StoreName()
}

// Tables returns every table name in type order.
func (s *Store) Tables() []string {
	all := model.AllProposalTypes()
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = s.TableName(t)
	}
	return out
}

// CreateAndFinalize puts a new record into the table of its type.
func (s *Store) CreateAndFinalize(ctx context.Context, sub model.Submission) (*model.Record, error) {
	if !sub.Type.IsValid() || !sub.Status.IsConcluded() || strings.TrimSpace(sub.Number) == "" {
		return nil, fmt.Errorf("%w: %s %s %q", ErrInvalidSubmission, sub.Type, sub.Status, sub.Number)
	}

	rec := &model.Record{
		ID:          uuid.NewString(),
		Number:      strings.TrimSpace(sub.Number),
		Analyst:     sub.Analyst,
		TypeLabel:   sub.TypeLabel(),
		Type:        sub.Type,
		Checklist:   sub.Checklist,
		Status:      sub.Status,
		CreatedAt:   sub.CreatedAt.UTC(),
		ConcludedAt: sub.ConcludedAt.UTC(),
		Duration:    sub.Duration,
		Filters:     sub.Filters,
		Timestamp:   s.now().UTC(),
	}

	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableName(sub.Type)),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put record %s: %w", rec.Number, err)
	}
	return rec, nil
}

// FindByNumber scans the tables taking part in duplicate checks and returns the
// most recently concluded match. It returns (nil, nil) when absent.
func (s *Store) FindByNumber(ctx context.Context, number string) (*model.Record, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("%w: empty number", ErrInvalidSubmission)
	}

	var found []model.Record
	for _, t := range model.AllProposalTypes() {
		if !t.ChecksDuplicates() {
			continue
		}
		recs, err := s.scan(ctx, t, "#n = :n",
			map[string]string{"#n": "numero_proposta"},
			map[string]types.AttributeValue{":n": &types.AttributeValueMemberS{Value: number}})
		if err != nil {
			return nil, err
		}
		found = append(found, recs...)
	}
	if len(found) == 0 {
		return nil, nil
	}
	sortNewestFirst(found)
	return &found[0], nil
}

// ListByAnalyst returns every record of analyst, newest first.
func (s *Store) ListByAnalyst(ctx context.Context, analyst string) ([]model.Record, error) {
	return s.ListWithFilters(ctx, service.RecordFilter{Analyst: analyst})
}

// ListByDateRange returns records concluded within [start, end], newest first.
func (s *Store) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Record, error) {
	return s.ListWithFilters(ctx, service.RecordFilter{StartDate: &start, EndDate: &end})
}

// ListWithFilters scans the relevant tables. Analyst and status are filtered
// server-side; dates are compared after decoding.
func (s *Store) ListWithFilters(ctx context.Context, filter service.RecordFilter) ([]model.Record, error) {
	var (
		conds  []string
		names  = map[string]string{}
		values = map[string]types.AttributeValue{}
	)
	if filter.Analyst != "" {
		conds = append(conds, "#a = :a")
		names["#a"] = "analista"
		values[":a"] = &types.AttributeValueMemberS{Value: filter.Analyst}
	}
	if filter.Status != "" {
		conds = append(conds, "#s = :s")
		names["#s"] = "status"
		values[":s"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
	}

	typesToScan := model.AllProposalTypes()
	if filter.Type != "" {
		typesToScan = []model.ProposalType{filter.Type}
	}

	var out []model.Record
	for _, t := range typesToScan {
		recs, err := s.scan(ctx, t, strings.Join(conds, " AND "), names, values)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			if filter.StartDate != nil && r.ConcludedAt.Before(*filter.StartDate) {
				continue
			}
			if filter.EndDate != nil && r.ConcludedAt.After(*filter.EndDate) {
				continue
			}
			out = append(out, r)
		}
	}

	sortNewestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

func (s *Store) scan(ctx context.Context, t model.ProposalType, filterExpr string, names map[string]string, values map[string]types.AttributeValue) ([]model.Record, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(s.TableName(t))}
	if filterExpr != "" {
		in.FilterExpression = aws.String(filterExpr)
		in.ExpressionAttributeNames = names
		in.ExpressionAttributeValues = values
	}

	var out []model.Record
	for {
		page, err := s.api.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.TableName(t), err)
		}
		for _, raw := range page.Items {
			var it recordItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("failed to unmarshal record: %w", err)
			}
			out = append(out, fromItem(it))
		}
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}
}

func toItem(r *model.Record) recordItem {
	return recordItem{
		ID:          r.ID,
		Number:      r.Number,
		Analyst:     r.Analyst,
		TypeLabel:   r.TypeLabel,
		Type:        string(r.Type),
		Checklist:   r.Checklist,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		ConcludedAt: r.ConcludedAt.UTC().Format(time.RFC3339Nano),
		Duration:    r.Duration,
		Filters:     r.Filters,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func fromItem(it recordItem) model.Record {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	concludedAt, _ := time.Parse(time.RFC3339Nano, it.ConcludedAt)
	timestamp, _ := time.Parse(time.RFC3339Nano, it.Timestamp)
	return model.Record{
		ID:          it.ID,
		Number:      it.Number,
		Analyst:     it.Analyst,
		TypeLabel:   it.TypeLabel,
		Type:        model.ProposalType(it.Type),
		Checklist:   it.Checklist,
		Status:      model.Status(it.Status),
		CreatedAt:   createdAt,
		ConcludedAt: concludedAt,
		Duration:    it.Duration,
		Filters:     it.Filters,
		Timestamp:   timestamp,
	}
}

func sortNewestFirst(recs []model.Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].ConcludedAt.After(recs[j].ConcludedAt) })
}
