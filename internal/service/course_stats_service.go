package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

var ErrStatsUnavailable = errors.New("course view stats unavailable")

// CourseStatsService records course page views in Elasticsearch and
// aggregates them for the admin dashboard. It degrades to
// ErrStatsUnavailable instead of failing requests when the cluster is
// down or unconfigured; view counts are decoration, not truth.
type CourseStatsService struct {
	es             *elasticsearch.Client
	viewIndex      string
	requestTimeout time.Duration
}

func NewCourseStatsService(es *elasticsearch.Client, viewIndex string, requestTimeout time.Duration) *CourseStatsService {
	if requestTimeout <= 0 {
		requestTimeout = 5 * time.Second
	}
	return &CourseStatsService{es: es, viewIndex: viewIndex, requestTimeout: requestTimeout}
}

type courseViewDoc struct {
	CourseID  string    `json:"course_id"`
	AccountID string    `json:"account_id,omitempty"`
	Timestamp time.Time `json:"@timestamp"`
}

// RecordView indexes one view event. accountID may be nil for anonymous
// visitors.
func (s *CourseStatsService) RecordView(ctx context.Context, courseID uuid.UUID, accountID *uuid.UUID) error {
	if s.es == nil {
		return fmt.Errorf("%w: elasticsearch client not configured", ErrStatsUnavailable)
	}

	doc := courseViewDoc{CourseID: courseID.String(), Timestamp: time.Now().UTC()}
	if accountID != nil {
		doc.AccountID = accountID.String()
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.es.Index(
		s.viewIndex,
		bytes.NewReader(payload),
		s.es.Index.WithContext(reqCtx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("%w: elasticsearch index error: %s", ErrStatsUnavailable, resp.String())
	}
	return nil
}

type CourseViewCount struct {
	CourseID    uuid.UUID `json:"courseId"`
	Views       int64     `json:"views"`
	UniqueUsers int64     `json:"uniqueUsers"`
}

// TopCourses returns the most viewed courses inside the window.
func (s *CourseStatsService) TopCourses(ctx context.Context, window time.Duration, limit int) ([]CourseViewCount, error) {
	if s.es == nil {
		return nil, fmt.Errorf("%w: elasticsearch client not configured", ErrStatsUnavailable)
	}
	if limit <= 0 {
		limit = 10
	}

	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"range": map[string]any{
				"@timestamp": map[string]any{
					"gte": time.Now().Add(-window).UTC().Format(time.RFC3339),
				},
			},
		},
		"aggs": map[string]any{
			"courses": map[string]any{
				"terms": map[string]any{
					"field": "course_id.keyword",
					"size":  limit,
				},
				"aggs": map[string]any{
					"unique_users": map[string]any{
						"cardinality": map[string]any{"field": "account_id.keyword"},
					},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.es.Search(
		s.es.Search.WithContext(reqCtx),
		s.es.Search.WithIndex(s.viewIndex),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("%w: elasticsearch search error: %s", ErrStatsUnavailable, resp.String())
	}

	var parsed struct {
		Aggregations struct {
			Courses struct {
				Buckets []struct {
					Key         string `json:"key"`
					DocCount    int64  `json:"doc_count"`
					UniqueUsers struct {
						Value float64 `json:"value"`
					} `json:"unique_users"`
				} `json:"buckets"`
			} `json:"courses"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrStatsUnavailable, err)
	}

	counts := make([]CourseViewCount, 0, len(parsed.Aggregations.Courses.Buckets))
	for _, bucket := range parsed.Aggregations.Courses.Buckets {
		id, err := uuid.Parse(bucket.Key)
		if err != nil {
			continue
		}
		counts = append(counts, CourseViewCount{
			CourseID:    id,
			Views:       bucket.DocCount,
			UniqueUsers: int64(bucket.UniqueUsers.Value),
		})
	}
	return counts, nil
}
