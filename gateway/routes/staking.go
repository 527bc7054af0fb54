package routes

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"emberchain/native/burn"
	"emberchain/native/rates"
	"emberchain/native/staking"
)

// Backend is the snapshot surface the gateway reads from. Implementations
// must be safe for concurrent readers.
type Backend interface {
	Position(id uint64) (*staking.Position, bool)
	PendingRewards(id uint64, now int64) (*big.Int, error)
	PositionsByOwner(owner [20]byte) ([]*staking.Position, error)
	PoolRate(pool staking.PoolKind) (base uint32, level rates.LevelRate, ok bool)
	BurnSummary() (*burn.History, *big.Int, error)
}

type stakingRoutes struct {
	backend Backend
}

func newStakingRoutes(backend Backend) *stakingRoutes {
	return &stakingRoutes{backend: backend}
}

func (s *stakingRoutes) mount(r chi.Router) {
	r.Get("/staking/positions/{id}", s.handlePosition)
	r.Get("/staking/owners/{address}/positions", s.handleOwnerPositions)
	r.Get("/rates/{pool}", s.handlePoolRate)
	r.Get("/burn/summary", s.handleBurnSummary)
}

type positionPayload struct {
	ID                 uint64 `json:"id"`
	Owner              string `json:"owner"`
	Pool               string `json:"pool"`
	Principal          string `json:"principal"`
	EntryFeePaid       string `json:"entryFeePaid"`
	OpenedAt           int64  `json:"openedAt"`
	LastAccrualAt      int64  `json:"lastAccrualAt"`
	AccumulatedRewards string `json:"accumulatedRewards"`
	PendingRewards     string `json:"pendingRewards,omitempty"`
	Status             string `json:"status"`
}

type ratePayload struct {
	Pool             string `json:"pool"`
	BaseAPYBps       uint32 `json:"baseApyBps"`
	EffectiveAPYBps  uint32 `json:"effectiveApyBps"`
	Level            uint32 `json:"level"`
	NextThreshold    string `json:"nextThreshold"`
	TimeWeightedBurn string `json:"timeWeightedBurn"`
}

type burnSummaryPayload struct {
	TotalBurned      string `json:"totalBurned"`
	Last24h          string `json:"last24h"`
	Last7d           string `json:"last7d"`
	Last30d          string `json:"last30d"`
	TimeWeightedBurn string `json:"timeWeightedBurn"`
	LastUpdate       int64  `json:"lastUpdate"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (s *stakingRoutes) handlePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid position id")
		return
	}
	position, ok := s.backend.Position(id)
	if !ok {
		writeError(w, http.StatusNotFound, "position not found")
		return
	}
	payload := positionToPayload(position)
	now := queryTimestamp(r)
	pending, err := s.backend.PendingRewards(id, now)
	if err == nil {
		payload.PendingRewards = pending.String()
	} else if !errors.Is(err, staking.ErrNonMonotonicTime) {
		writeError(w, http.StatusInternalServerError, "pending rewards unavailable")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *stakingRoutes) handleOwnerPositions(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	positions, err := s.backend.PositionsByOwner(owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "positions unavailable")
		return
	}
	payload := make([]positionPayload, 0, len(positions))
	for _, position := range positions {
		payload = append(payload, positionToPayload(position))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *stakingRoutes) handlePoolRate(w http.ResponseWriter, r *http.Request) {
	pool := staking.PoolKind(chi.URLParam(r, "pool"))
	if !pool.Valid() {
		writeError(w, http.StatusBadRequest, "unknown pool")
		return
	}
	base, level, ok := s.backend.PoolRate(pool)
	if !ok {
		writeError(w, http.StatusNotFound, "pool not configured")
		return
	}
	_, weighted, err := s.backend.BurnSummary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "burn summary unavailable")
		return
	}
	effective := level.RateBps
	if base > effective {
		effective = base
	}
	writeJSON(w, http.StatusOK, ratePayload{
		Pool:             string(pool),
		BaseAPYBps:       base,
		EffectiveAPYBps:  effective,
		Level:            level.Level,
		NextThreshold:    level.NextThreshold.String(),
		TimeWeightedBurn: weighted.String(),
	})
}

func (s *stakingRoutes) handleBurnSummary(w http.ResponseWriter, r *http.Request) {
	history, weighted, err := s.backend.BurnSummary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "burn summary unavailable")
		return
	}
	writeJSON(w, http.StatusOK, burnSummaryPayload{
		TotalBurned:      history.TotalBurned.String(),
		Last24h:          history.Last24h.String(),
		Last7d:           history.Last7d.String(),
		Last30d:          history.Last30d.String(),
		TimeWeightedBurn: weighted.String(),
		LastUpdate:       history.LastUpdate,
	})
}

func positionToPayload(p *staking.Position) positionPayload {
	return positionPayload{
		ID:                 p.ID,
		Owner:              "0x" + hex.EncodeToString(p.Owner[:]),
		Pool:               string(p.Pool),
		Principal:          p.Principal.String(),
		EntryFeePaid:       p.EntryFeePaid.String(),
		OpenedAt:           p.OpenedAt,
		LastAccrualAt:      p.LastAccrualAt,
		AccumulatedRewards: p.AccumulatedRewards.String(),
		Status:             string(p.Status),
	}
}

// queryTimestamp reads the optional "at" query parameter. The engines never
// sample a clock; the gateway supplies one for read projections only.
func queryTimestamp(r *http.Request) int64 {
	if raw := r.URL.Query().Get("at"); raw != "" {
		if at, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return at
		}
	}
	return time.Now().Unix()
}

func parseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	if len(raw) >= 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		raw = raw[2:]
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return addr, err
	}
	if len(decoded) != len(addr) {
		return addr, errors.New("address must be 20 bytes")
	}
	copy(addr[:], decoded)
	return addr, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Error: message})
}
