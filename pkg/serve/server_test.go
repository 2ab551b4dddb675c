package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/pool"
	"github.com/quillcheck/quillcheck/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	m, err := matcher.New(matcher.Config{
		Rules: []*types.Rule{
			{
				ID:       "style.very-unique",
				Pattern:  `(?i)\bvery unique\b`,
				Message:  "Absolute adjectives cannot be intensified.",
				Category: types.Category{ID: "style", Name: "Style"},
			},
		},
	})
	require.NoError(t, err)

	p := pool.New()
	t.Cleanup(p.Close)
	p.AddMatcher(m)
	return p
}

func runServer(t *testing.T, p *pool.Pool, input string) []Response {
	t.Helper()
	out := &bytes.Buffer{}
	srv := NewServer(p, strings.NewReader(input), out)
	require.NoError(t, srv.Run(context.Background()))

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServer_SendsReadyOnStart(t *testing.T) {
	p := newTestPool(t)

	out := &bytes.Buffer{}
	srv := NewServer(p, strings.NewReader(""), out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately to exit after ready

	_ = srv.Run(ctx)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ready", resp.Type)
}

func TestServer_Check(t *testing.T) {
	p := newTestPool(t)

	input := `{"type":"check","payload":{"id":"doc-1","setId":"set-1","blocks":[{"id":"block-1","text":"This is very unique.","from":0,"to":20}]}}` + "\n"
	responses := runServer(t, p, input)
	require.Len(t, responses, 2) // ready + check

	resp := responses[1]
	require.True(t, resp.Success)
	assert.Equal(t, "check", resp.Type)

	var data CheckData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "This is very unique.", data.Input)
	assert.Equal(t, []string{"style"}, data.Results.CategoryIDs)
	require.Len(t, data.Results.Matches, 1)
	assert.Equal(t, "very unique", data.Results.Matches[0].MatchedText)
	assert.Equal(t, 8, data.Results.Matches[0].FromPos)
	assert.Equal(t, 18, data.Results.Matches[0].ToPos)
}

func TestServer_Categories(t *testing.T) {
	p := newTestPool(t)

	responses := runServer(t, p, `{"type":"categories"}`+"\n")
	require.Len(t, responses, 2)

	var data CategoriesData
	require.NoError(t, json.Unmarshal(responses[1].Data, &data))
	require.Len(t, data.Categories, 1)
	assert.Equal(t, "style", data.Categories[0].ID)
}

func TestServer_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "malformed payload",
			input:   `{"type":"check","payload":"not an object"}`,
			wantErr: "cannot unmarshal",
		},
		{
			name:    "missing setId",
			input:   `{"type":"check","payload":{"blocks":[{"id":"b","text":"x","from":0,"to":1}]}}`,
			wantErr: "setId is required",
		},
		{
			name:    "no blocks",
			input:   `{"type":"check","payload":{"setId":"s"}}`,
			wantErr: "no blocks",
		},
		{
			name:    "inconsistent offsets",
			input:   `{"type":"check","payload":{"setId":"s","blocks":[{"id":"b","text":"abc","from":0,"to":9}]}}`,
			wantErr: "text length",
		},
		{
			name:    "duplicate block ids",
			input:   `{"type":"check","payload":{"setId":"s","blocks":[{"id":"b","text":"x","from":0,"to":1},{"id":"b","text":"y","from":1,"to":2}]}}`,
			wantErr: "duplicate block id",
		},
		{
			name:    "unknown request type",
			input:   `{"type":"bogus"}`,
			wantErr: "unknown request type",
		},
		{
			name:    "unknown category",
			input:   `{"type":"check","payload":{"setId":"s","categoryIds":["nope"],"blocks":[{"id":"b","text":"x","from":0,"to":1}]}}`,
			wantErr: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPool(t)
			responses := runServer(t, p, tt.input+"\n")
			require.Len(t, responses, 2)

			resp := responses[1]
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantErr)
		})
	}
}

func TestServer_CloseRequestExits(t *testing.T) {
	p := newTestPool(t)
	responses := runServer(t, p, `{"type":"close"}`+"\n")
	require.Len(t, responses, 1) // ready only
	assert.Equal(t, "ready", responses[0].Type)
}
