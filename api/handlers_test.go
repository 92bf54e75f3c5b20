package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	mockdb "github.com/banachtech/binotree/db/mock"
	db "github.com/banachtech/binotree/db/sqlc"
)

var microsoft = db.Preset{
	Name:      "Microsoft",
	Drift:     0.1512,
	Vol:       0.16509,
	Rate:      0.009,
	Spot:      64.94,
	UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
}

func americanPut(periods int) gin.H {
	return gin.H{
		"periods": periods,
		"drift":   6e-4,
		"vol":     1.04e-2,
		"rate":    4e-5,
		"spot":    64.94,
		"dividends": []gin.H{
			{"period": (periods + 1) / 2, "yield": 5e-3},
		},
		"option": gin.H{"style": "american", "side": "put", "strike": 64.94},
	}
}

func with(body gin.H, key string, value any) gin.H {
	out := gin.H{}
	for k, v := range body {
		out[k] = v
	}
	out[key] = value
	return out
}

func serve(t *testing.T, server *Server, method, url string, body gin.H) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	request, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	addAuthorization(t, request, testAPIKey)

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	return out
}

func TestLatticeAPI(t *testing.T) {
	testCases := []struct {
		name          string
		body          gin.H
		buildStubs    func(store *mockdb.MockStore)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			body: americanPut(4),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[latticeResponse](t, recorder)
				require.Len(t, rsp.Nodes, 15)
				require.Len(t, rsp.Probabilities, 4)
				require.Equal(t, "0_0", rsp.Nodes[0].ID)
				require.Equal(t, "64.94", rsp.Nodes[0].Label)
				require.Equal(t, rsp.Value, rsp.Nodes[0].Envelope)
				require.Equal(t, 1.0, rsp.Numeraire)
				require.Nil(t, rsp.FirstCrossing)
				for _, n := range rsp.Nodes {
					require.GreaterOrEqual(t, n.Envelope, n.Payoff)
					require.Nil(t, n.KnockedOut)
				}
			},
		},
		{
			name: "PRESET",
			body: gin.H{
				"preset":  "Microsoft",
				"periods": 10,
				"option":  gin.H{"style": "european", "kind": "digital", "side": "call", "strike": 65},
			},
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetPreset(gomock.Any(), gomock.Eq("Microsoft")).Times(1).Return(microsoft, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[latticeResponse](t, recorder)
				require.Equal(t, "European Binary Call K=65", rsp.Contract)
				require.Positive(t, rsp.Value)
				require.Less(t, rsp.Value, 1.0)
			},
		},
		{
			name: "BARRIER",
			body: with(americanPut(20), "barrier", gin.H{"level": 63, "calendar": []int{5, 10, 20}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[latticeResponse](t, recorder)
				require.NotNil(t, rsp.FirstCrossing)
				knocked, irrelevant := 0, 0
				for _, n := range rsp.Nodes {
					require.NotNil(t, n.KnockedOut)
					require.NotNil(t, n.Relevant)
					require.Positive(t, n.Price)
					if *n.KnockedOut {
						knocked++
						require.Zero(t, n.Envelope)
					}
					if !*n.Relevant {
						irrelevant++
					}
				}
				require.Positive(t, knocked)
				require.Positive(t, irrelevant)
			},
		},
		{
			name: "PRESET_NOT_FOUND",
			body: with(americanPut(4), "preset", "Tesla"),
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetPreset(gomock.Any(), gomock.Eq("Tesla")).Times(1).Return(db.Preset{}, sql.ErrNoRows)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "STORE_ERROR",
			body: with(americanPut(4), "preset", "Microsoft"),
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetPreset(gomock.Any(), gomock.Any()).Times(1).Return(db.Preset{}, sql.ErrConnDone)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name: "MISSING_OPTION",
			body: gin.H{"periods": 4, "vol": 0.01, "spot": 10},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UNSUPPORTED_STYLE",
			body: with(americanPut(4), "option", gin.H{"style": "asian", "side": "put", "strike": 10}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "BERMUDA_WITHOUT_FREQUENCY",
			body: with(americanPut(4), "option", gin.H{"style": "bermuda", "side": "put", "strike": 10}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "TOO_MANY_PERIODS",
			body: with(americanPut(4), "periods", 301),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "DIVIDEND_OUT_OF_RANGE",
			body: with(americanPut(4), "dividends", []gin.H{{"period": 9, "yield": 0.01}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "DIVIDEND_WITHOUT_PERIOD",
			body: with(americanPut(4), "dividends", []gin.H{{"yield": 0.01}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "EX_DATE_WITHOUT_START",
			body: with(americanPut(4), "dividends", []gin.H{{"ex_date": "2024-07-05", "yield": 0.01}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "EX_DATE_BEYOND_MATURITY",
			body: with(with(americanPut(4), "start", "2024-07-01"), "dividends", []gin.H{{"ex_date": "2024-07-12", "yield": 0.01}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "ZERO_VOL",
			body: with(americanPut(4), "vol", 0),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "BAD_CALENDAR",
			body: with(americanPut(4), "barrier", gin.H{"level": 60, "calendar": []int{7}}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(t, store)
			if tc.buildStubs != nil {
				tc.buildStubs(store)
			}

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodPost, "/v1/lattice", tc.body)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestExDateDividend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockdb.NewMockStore(ctrl)
	store.EXPECT().GetUser(gomock.Any(), gomock.Eq(testPrefix)).Times(2).Return(testUser(t, time.Now().AddDate(1, 0, 0)), nil)
	server := newTestServer(t, store)

	byPeriod := with(americanPut(4), "dividends", []gin.H{{"period": 3, "yield": 0.01}})
	// 2024-07-04 is a holiday, so the 5th is the third business day
	byDate := with(with(americanPut(4), "start", "2024-07-01"), "dividends", []gin.H{{"ex_date": "2024-07-05", "yield": 0.01}})

	a := serve(t, server, http.MethodPost, "/v1/lattice", byPeriod)
	b := serve(t, server, http.MethodPost, "/v1/lattice", byDate)
	require.Equal(t, http.StatusOK, a.Code)
	require.Equal(t, http.StatusOK, b.Code)
	require.Equal(t, decode[latticeResponse](t, a), decode[latticeResponse](t, b))
}

func TestZeroYieldDividend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockdb.NewMockStore(ctrl)
	store.EXPECT().GetUser(gomock.Any(), gomock.Eq(testPrefix)).Times(2).Return(testUser(t, time.Now().AddDate(1, 0, 0)), nil)
	server := newTestServer(t, store)

	zero := with(americanPut(4), "dividends", []gin.H{{"period": 2, "yield": 0}})

	a := serve(t, server, http.MethodPost, "/v1/lattice", americanPut(4))
	b := serve(t, server, http.MethodPost, "/v1/lattice", zero)
	require.Equal(t, http.StatusOK, a.Code)
	require.Equal(t, http.StatusOK, b.Code)
	require.Equal(t, decode[latticeResponse](t, a), decode[latticeResponse](t, b))
}

func TestDecomposeAPI(t *testing.T) {
	down := make([]int, 30)
	for i := range down {
		down[i] = -1
	}

	testCases := []struct {
		name          string
		body          gin.H
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "MOVES",
			body: with(americanPut(30), "moves", down),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[decomposeResponse](t, recorder)
				require.Len(t, rsp.Excess, 31)
				require.Len(t, rsp.Nodes, 31)
				require.Equal(t, "30_30", rsp.Nodes[30])
				require.Zero(t, rsp.Excess[0])
				for i := 1; i < len(rsp.Excess); i++ {
					require.GreaterOrEqual(t, rsp.Excess[i], rsp.Excess[i-1])
				}
				for i := range rsp.Envelope {
					require.Equal(t, rsp.Envelope[i]+rsp.Excess[i], rsp.Martingale[i])
				}
				require.Contains(t, rsp.StoppingTimes, 30)
			},
		},
		{
			name: "NODES",
			body: with(americanPut(2), "nodes", []string{"0_0", "1_1", "2_0"}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[decomposeResponse](t, recorder)
				require.Equal(t, []string{"0_0", "1_1", "2_0"}, rsp.Nodes)
			},
		},
		{
			name: "ENDPOINT",
			body: with(americanPut(6), "endpoint", "6_0"),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				rsp := decode[decomposeResponse](t, recorder)
				require.Equal(t, []string{"0_0", "1_1", "2_2", "3_3", "4_2", "5_1", "6_0"}, rsp.Nodes)
			},
		},
		{
			name: "NO_PATH",
			body: americanPut(6),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "DISCONNECTED_NODES",
			body: with(americanPut(1), "nodes", []string{"0_0", "1_3"}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "SHORT_PATH",
			body: with(americanPut(6), "moves", []int{1, 1}),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "INNER_ENDPOINT",
			body: with(americanPut(6), "endpoint", "3_1"),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(t, store)

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodPost, "/v1/decompose", tc.body)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestStrategyAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockdb.NewMockStore(ctrl)
	expectAuth(t, store)

	server := newTestServer(t, store)
	recorder := serve(t, server, http.MethodPost, "/v1/strategy", americanPut(5))
	require.Equal(t, http.StatusOK, recorder.Code)

	rsp := decode[strategyResponse](t, recorder)
	require.Len(t, rsp.Positions, 15)
	require.Equal(t, "0_0", rsp.Positions[0].ID)
	// a put is hedged with a short position in the underlying
	require.Negative(t, rsp.Positions[0].Shares)
}

func TestPresetAPI(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		buildStubs    func(store *mockdb.MockStore)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			url:  "/v1/presets/Microsoft",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetPreset(gomock.Any(), gomock.Eq("Microsoft")).Times(1).Return(microsoft, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Equal(t, microsoft, decode[db.Preset](t, recorder))
			},
		},
		{
			name: "NOT_FOUND",
			url:  "/v1/presets/Tesla",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetPreset(gomock.Any(), gomock.Eq("Tesla")).Times(1).Return(db.Preset{}, sql.ErrNoRows)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "LIST",
			url:  "/v1/presets",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().ListPresets(gomock.Any()).Times(1).Return([]db.Preset{microsoft}, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Equal(t, []db.Preset{microsoft}, decode[[]db.Preset](t, recorder))
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(t, store)
			tc.buildStubs(store)

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodGet, tc.url, nil)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockdb.NewMockStore(ctrl)
	expectAuth(t, store)
	server := newTestServer(t, store)
	require.Equal(t, http.StatusOK, serve(t, server, http.MethodPost, "/v1/lattice", americanPut(3)).Code)

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `binotree_http_requests_total{endpoint="/v1/lattice",method="POST",status_code="200"} 1`)
	require.Contains(t, recorder.Body.String(), "binotree_lattice_build_seconds")
}
