package zillow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetrent/internal/config"
	"jetrent/internal/model"
)

func newTestClient(url string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(&config.SearchConfig{ScraperURL: url, ScraperTimeout: 5}, logger)
}

func TestNewScraperParams(t *testing.T) {
	slots := model.SearchSlots{
		Location: model.StringPtr("Brooklyn"),
		State:    model.StringPtr("ny"),
		Bedrooms: model.IntPtr(1),
		Budget:   model.Float64Ptr(2500),
	}

	params := NewScraperParams(slots, 10000)
	assert.Equal(t, ScraperParams{
		IsApartment: true,
		MaxPrice:    2500,
		Search:      "Brooklyn, NY",
		Status:      StatusForRent,
	}, params)

	noBudget := NewScraperParams(model.SearchSlots{Location: model.StringPtr("Chicago")}, 0)
	assert.Equal(t, float64(DefaultMaxPrice), noBudget.MaxPrice)
	assert.Equal(t, "Chicago", noBudget.Search)
}

func TestScraperParams_WireFormat(t *testing.T) {
	body, err := json.Marshal(NewScraperParams(model.SearchSlots{Location: model.StringPtr("Boston")}, 10000))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isApartment": true, "isCondo": false, "isLotLand": false, "isManufactured": false,
		"isMultiFamily": false, "isSingleFamily": false, "isTownhouse": false,
		"maxPrice": 10000, "search": "Boston", "status": "isForRent"
	}`, string(body))
}

func TestClassifyResponse(t *testing.T) {
	item := `{"zpid":"1","price":"$2,000/mo","address":"1 Main St","minBeds":1,"minBaths":1,"imgSrc":"x","hasImage":true}`

	tests := []struct {
		name    string
		body    string
		shape   ResponseShape
		wrapper string
		count   int
		skipped int
		wantErr bool
	}{
		{name: "Bare array", body: "[" + item + "," + item + "]", shape: ShapeArray, count: 2},
		{name: "Empty array", body: "[]", shape: ShapeArray, count: 0},
		{name: "Data wrapper", body: `{"success":true,"data":[` + item + `]}`, shape: ShapeWrapped, wrapper: "data", count: 1},
		{name: "Properties wrapper", body: `{"properties":[` + item + `]}`, shape: ShapeWrapped, wrapper: "properties", count: 1},
		{name: "Results wrapper", body: `{"results":[]}`, shape: ShapeWrapped, wrapper: "results", count: 0},
		{name: "Data is not an array", body: `{"data":{"items":[]}}`, shape: ShapeUnrecognized, wantErr: true},
		{name: "Unknown object", body: `{"message":"rate limited"}`, shape: ShapeUnrecognized, wantErr: true},
		{name: "Null", body: `null`, shape: ShapeUnrecognized, wantErr: true},
		{name: "Empty body", body: ``, shape: ShapeUnrecognized, wantErr: true},
		{name: "Not JSON", body: `<html>oops</html>`, shape: ShapeUnrecognized, wantErr: true},
		{name: "Broken array", body: `[{"zpid":`, shape: ShapeUnrecognized, wantErr: true},
		{
			name:    "Numeric zpid",
			body:    `{"data":[` + item + `,{"zpid":2084,"price":2450,"address":"2 Main St","minBeds":2}]}`,
			shape:   ShapeWrapped,
			wrapper: "data",
			count:   2,
		},
		{
			name:    "Bad item is skipped",
			body:    `[` + item + `,{"zpid":"2","minBeds":"two"},"oops"]`,
			shape:   ShapeArray,
			count:   1,
			skipped: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyResponse([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.shape, got.Shape)
			assert.Equal(t, tt.wrapper, got.WrapperKey)
			assert.Len(t, got.Properties, tt.count)
			assert.Len(t, got.Skipped, tt.skipped)
		})
	}
}

func TestClassifyResponse_NumericFields(t *testing.T) {
	got, err := ClassifyResponse([]byte(`[{"zpid":2084123456,"price":2450,"address":"2 Main St","minBeds":2}]`))
	require.NoError(t, err)
	require.Len(t, got.Properties, 1)

	listing := ToListing(got.Properties[0])
	assert.Equal(t, "2084123456", listing.ID)
	assert.Equal(t, 2450.0, listing.Rent)
	assert.Equal(t, "https://www.zillow.com/homedetails/2084123456_zpid/", listing.ExternalURL)
}

func TestClient_FetchProperties(t *testing.T) {
	var received ScraperParams
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"plid":"abc","zpid":"99","price":"$2,450/mo","address":"10 Court St, Brooklyn, NY","minBeds":1,"minBaths":1,"detailUrl":"/b/10-court-st/","statusText":"Apartment for rent"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	params := NewScraperParams(model.SearchSlots{Location: model.StringPtr("Brooklyn"), State: model.StringPtr("NY")}, 10000)

	result, err := client.FetchProperties(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn, NY", received.Search)
	assert.True(t, received.IsApartment)
	assert.Equal(t, ShapeWrapped, result.Shape)
	require.Len(t, result.Properties, 1)
	assert.Equal(t, "abc", result.Properties[0].ID())
}

func TestClient_FetchProperties_Errors(t *testing.T) {
	t.Run("Non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).FetchProperties(context.Background(), ScraperParams{Search: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		defer server.Close()

		result, err := newTestClient(server.URL).FetchProperties(context.Background(), ScraperParams{Search: "x"})
		require.Error(t, err)
		assert.Equal(t, ShapeUnrecognized, result.Shape)
		assert.Empty(t, result.Properties)
	})

	t.Run("Network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(url).FetchProperties(context.Background(), ScraperParams{Search: "x"})
		assert.Error(t, err)
	})
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"$2,450/mo", 2450},
		{"$2,100+ 1 bd", 2100},
		{"$1,999.50", 1999.5},
		{"Contact for price", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.input))
		})
	}
}

func TestToListing(t *testing.T) {
	prop := model.ScrapedProperty{
		ZPID:         "2084",
		Price:        "$3,100/mo",
		Address:      "5 Seaport Blvd, Boston, MA",
		BuildingName: "Seaport Lofts",
		MinBeds:      2,
		MinBaths:     1.5,
		StatusText:   "Apartment for rent",
		BadgeInfo:    &model.BadgeInfo{Type: "NEW", Text: "New"},
		ImgSrc:       "https://photos.example/1.jpg",
	}

	listing := ToListing(prop)
	assert.Equal(t, "2084", listing.ID)
	assert.Equal(t, "Seaport Lofts", listing.Title)
	assert.Equal(t, 2, listing.Bedrooms)
	assert.Equal(t, 1.5, listing.Bathrooms)
	assert.Equal(t, float64(3100), listing.Rent)
	assert.Equal(t, "Apartment for rent · New", listing.Description)
	assert.Equal(t, "https://www.zillow.com/homedetails/2084_zpid/", listing.ExternalURL)
	assert.Equal(t, model.SourceRemote, listing.Source)

	untitled := ToListing(model.ScrapedProperty{PLID: "p1", Address: "1 Main St"})
	assert.Equal(t, "1 Main St", untitled.Title)
	assert.Equal(t, "", untitled.Description)
}
