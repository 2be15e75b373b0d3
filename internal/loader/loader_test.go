package loader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resourcefinda/internal/models"
	"resourcefinda/pkg/datastore"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q string) (*datastore.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.SearchResult), args.Error(1)
}

func (m *MockSearcher) SearchURL(q string) (string, error) {
	return "https://example.org/datastore_search?q=" + q, nil
}

func rows(raw ...string) *datastore.SearchResult {
	res := &datastore.SearchResult{Total: len(raw)}
	for _, r := range raw {
		res.Records = append(res.Records, json.RawMessage(r))
	}
	return res
}

func ptr(v float64) *float64 { return &v }

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want []models.Facility
	}{
		{
			name: "full record",
			rows: []string{`{"_id": 7, "Centre name": "Alpha Lab", "Abbreviation": "AL", "Overview": "short", "Address": "1 St", "Sectors": "Health;Tech", "Latitude": -27.5, "Longitude": 153.0}`},
			want: []models.Facility{{ID: 7, Name: "Alpha Lab", Abbreviation: "AL", Overview: "short", Address: "1 St", Sectors: "Health;Tech", Latitude: ptr(-27.5), Longitude: ptr(153.0)}},
		},
		{
			name: "numeric strings and null overview",
			rows: []string{`{"Centre name": "Beta", "Overview": null, "Latitude": "-19.25", "Longitude": "146.8"}`},
			want: []models.Facility{{Name: "Beta", Latitude: ptr(-19.25), Longitude: ptr(146.8)}},
		},
		{
			name: "missing coordinates stay absent",
			rows: []string{`{"Centre name": "Gamma", "Latitude": "", "Longitude": null}`},
			want: []models.Facility{{Name: "Gamma"}},
		},
		{
			name: "only one coordinate present",
			rows: []string{`{"Centre name": "Delta", "Latitude": -27.1}`},
			want: []models.Facility{{Name: "Delta", Latitude: ptr(-27.1)}},
		},
		{
			name: "unparseable coordinate clears both",
			rows: []string{`{"Centre name": "Epsilon", "Latitude": "n/a", "Longitude": 153}`},
			want: []models.Facility{{Name: "Epsilon"}},
		},
		{
			name: "out of range coordinate clears both",
			rows: []string{`{"Centre name": "Zeta", "Latitude": 153.0, "Longitude": -27.5}`},
			want: []models.Facility{{Name: "Zeta"}},
		},
		{
			name: "record without name is kept",
			rows: []string{
				`{"Centre name": "  ", "Latitude": 1, "Longitude": 2}`,
				`{"Centre name": "Eta", "Latitude": 3, "Longitude": 4}`,
			},
			want: []models.Facility{
				{Latitude: ptr(1), Longitude: ptr(2)},
				{Name: "Eta", Latitude: ptr(3), Longitude: ptr(4)},
			},
		},
		{
			name: "unnamed record with bad coordinates is kept unmapped",
			rows: []string{`{"Latitude": "n/a", "Longitude": 2}`},
			want: []models.Facility{{}},
		},
		{
			name: "upstream order is kept",
			rows: []string{`{"Centre name": "Zulu"}`, `{"Centre name": "Alpha"}`},
			want: []models.Facility{{Name: "Zulu"}, {Name: "Alpha"}},
		},
		{
			name: "empty result",
			rows: nil,
			want: []models.Facility{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(MockSearcher)
			searcher.On("Search", mock.Anything, "").Return(rows(tt.rows...), nil)

			got, err := New(searcher).Load(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			searcher.AssertExpectations(t)
		})
	}
}

func TestLoader_Load_PassesSearchTerm(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "marine").Return(rows(), nil)

	_, err := New(searcher).Load(context.Background(), "marine")
	require.NoError(t, err)
	searcher.AssertExpectations(t)
}

func TestLoader_Load_PropagatesNetworkError(t *testing.T) {
	upstream := &datastore.NetworkError{URL: "https://example.org", StatusCode: 503, Err: errors.New("503 Service Unavailable")}
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "").Return(nil, upstream)

	got, err := New(searcher).Load(context.Background(), "")
	assert.Nil(t, got)
	var netErr *datastore.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 503, netErr.StatusCode)
}

func TestLoader_Load_NonObjectRecordIsMalformed(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "").Return(rows(`{"Centre name": "ok"}`, `"just a string"`), nil)

	got, err := New(searcher).Load(context.Background(), "")
	assert.Nil(t, got)
	var malformed *datastore.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.ErrorIs(t, err, errNotObject)
}

func TestTextCell(t *testing.T) {
	cases := []struct {
		name string
		input string
		want  string
	}{
		{"string", `"1 St"`, "1 St"},
		{"null", `null`, ""},
		{"missing", ``, ""},
		{"number", `4000`, "4000"},
		{"object", `{}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, textCell(json.RawMessage(tc.input)))
		})
	}
}
