// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/chirper/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"?page=0&limit=0", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"?page=-2&limit=1000", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"?page=abc&limit=x", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/posts"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasPrev())
	assert.True(t, meta.HasNext())

	last := pagination.NewMeta(3, 10, 25)
	assert.False(t, last.HasNext())

	empty := pagination.NewMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasPrev())
	assert.False(t, empty.HasNext())
}
