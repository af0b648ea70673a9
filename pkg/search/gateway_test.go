package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureService struct {
	got  Request
	page *Page
	err  error
}

func (s *captureService) Search(ctx context.Context, req Request) (*Page, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	if s.page != nil {
		return s.page, nil
	}
	return &Page{Results: []Result{}, Page: req.Page, PerPage: req.PerPage}, nil
}

func TestGateway_Query_ClampsPerPage(t *testing.T) {
	tests := []struct {
		name        string
		perPage     int
		wantPerPage int
	}{
		{"oversized request reduced to ceiling", 10000, MaxPerPage},
		{"exactly the ceiling passes", 300, 300},
		{"in range passes through", 50, 50},
		{"zero gets the default", 0, DefaultPerPage},
		{"negative gets the default", -1, DefaultPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &captureService{}
			gateway := NewGateway(service)

			_, err := gateway.Query(context.Background(), Request{Entity: "projects", PerPage: tt.perPage, Page: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPerPage, service.got.PerPage)
		})
	}
}

func TestGateway_Query_ClampsPage(t *testing.T) {
	service := &captureService{}
	gateway := NewGateway(service)

	_, err := gateway.Query(context.Background(), Request{Entity: "projects", Page: -3, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, service.got.Page)

	_, err = gateway.Query(context.Background(), Request{Entity: "projects", Page: 0, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, service.got.Page)
}

func TestGateway_Query_PassesSortThroughOpaquely(t *testing.T) {
	service := &captureService{}
	gateway := NewGateway(service)

	req := Request{
		Entity:  "projects",
		Query:   "http client",
		Filters: map[string]string{"platforms": "Rubygems"},
		Sort:    "stars",
		Order:   "desc",
		Page:    2,
		PerPage: 25,
	}
	_, err := gateway.Query(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "http client", service.got.Query)
	assert.Equal(t, "stars", service.got.Sort)
	assert.Equal(t, "desc", service.got.Order)
	assert.Equal(t, map[string]string{"platforms": "Rubygems"}, service.got.Filters)
	assert.Equal(t, 2, service.got.Page)
}

func TestGateway_Query_WrapsServiceErrors(t *testing.T) {
	service := &captureService{err: errors.New("index unavailable")}
	gateway := NewGateway(service)

	_, err := gateway.Query(context.Background(), Request{Entity: "projects"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestGateway_Query_ReturnsServicePage(t *testing.T) {
	service := &captureService{page: &Page{
		Results:    []Result{{ID: 1, Name: "rails", Platform: "Rubygems"}},
		TotalCount: 42,
		Page:       1,
		PerPage:    30,
	}}
	gateway := NewGateway(service)

	page, err := gateway.Query(context.Background(), Request{Entity: "projects", Page: 1, PerPage: 30})
	require.NoError(t, err)
	assert.Equal(t, 42, page.TotalCount)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "rails", page.Results[0].Name)
}
