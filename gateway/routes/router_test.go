package routes

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"emberchain/gateway/middleware"
	"emberchain/native/burn"
	"emberchain/native/rates"
	"emberchain/native/staking"
)

type stubBackend struct {
	positions map[uint64]*staking.Position
	pending   *big.Int
	history   *burn.History
	weighted  *big.Int
	baseAPY   uint32
	level     rates.LevelRate
}

func (s *stubBackend) Position(id uint64) (*staking.Position, bool) {
	position, ok := s.positions[id]
	return position, ok
}

func (s *stubBackend) PendingRewards(id uint64, now int64) (*big.Int, error) {
	return s.pending, nil
}

func (s *stubBackend) PositionsByOwner(owner [20]byte) ([]*staking.Position, error) {
	var out []*staking.Position
	for _, position := range s.positions {
		if position.Owner == owner {
			out = append(out, position)
		}
	}
	return out, nil
}

func (s *stubBackend) PoolRate(pool staking.PoolKind) (uint32, rates.LevelRate, bool) {
	return s.baseAPY, s.level, true
}

func (s *stubBackend) BurnSummary() (*burn.History, *big.Int, error) {
	return s.history, s.weighted, nil
}

func newTestBackend() *stubBackend {
	var owner [20]byte
	owner[19] = 0x42
	history := burn.NewHistory()
	if err := burn.RecordBurn(history, big.NewInt(10_000), 500); err != nil {
		panic(err)
	}
	return &stubBackend{
		positions: map[uint64]*staking.Position{
			7: {
				ID:                 7,
				Owner:              owner,
				Pool:               staking.PoolMidTerm,
				Principal:          big.NewInt(1_000_000),
				EntryFeePaid:       big.NewInt(10_000),
				OpenedAt:           100,
				LastAccrualAt:      100,
				AccumulatedRewards: big.NewInt(123),
				Status:             staking.StatusActive,
			},
		},
		pending:  big.NewInt(45),
		history:  history,
		weighted: big.NewInt(10_000),
		baseAPY:  1_500,
		level: rates.LevelRate{
			RateBps:       1_750,
			Level:         3,
			NextThreshold: big.NewInt(140_000),
		},
	}
}

func newTestRouter(backend Backend) http.Handler {
	return New(Config{Backend: backend, CORS: middleware.CORSConfig{}})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetPosition(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/staking/positions/7?at=200", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}
	var payload positionPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ID != 7 || payload.Pool != "midTerm" || payload.Status != "active" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Principal != "1000000" || payload.PendingRewards != "45" {
		t.Fatalf("unexpected amounts: %+v", payload)
	}
	if payload.Owner != "0x0000000000000000000000000000000000000042" {
		t.Fatalf("unexpected owner encoding: %s", payload.Owner)
	}
}

func TestGetPositionNotFound(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/staking/positions/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetPositionBadID(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/staking/positions/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestOwnerPositions(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	target := "/v1/staking/owners/0x0000000000000000000000000000000000000042/positions"
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload []positionPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload) != 1 || payload[0].ID != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOwnerPositionsBadAddress(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/staking/owners/nothex/positions", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestPoolRate(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rates/midTerm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload ratePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.BaseAPYBps != 1_500 || payload.EffectiveAPYBps != 1_750 || payload.Level != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.NextThreshold != "140000" {
		t.Fatalf("unexpected next threshold: %s", payload.NextThreshold)
	}
}

func TestPoolRateUnknownPool(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rates/instant", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBurnSummary(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/burn/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload burnSummaryPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.TotalBurned != "10000" || payload.TimeWeightedBurn != "10000" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router := newTestRouter(newTestBackend())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "9f1c5ae0-9d4f-4a53-b7a1-72e4cf0d4af5")
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "9f1c5ae0-9d4f-4a53-b7a1-72e4cf0d4af5" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
