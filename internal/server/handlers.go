package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"order-splitter/internal/exchange"
	"order-splitter/internal/splitter"
	"order-splitter/internal/telemetry"
)

// orderRequest 对应 POST /order 的请求体。number 映射为拆分份数，
// amountDif 为单个 Stack 体积的抖动界。
type orderRequest struct {
	Volume    float64 `json:"volume"`
	Number    int     `json:"number"`
	AmountDif float64 `json:"amountDif"`
	Side      string  `json:"side"`
	PriceMin  float64 `json:"priceMin"`
	PriceMax  float64 `json:"priceMax"`
}

func (r orderRequest) metaOrder() splitter.MetaOrder {
	return splitter.MetaOrder{
		Volume:       r.Volume,
		StackCount:   r.Number,
		VolumeJitter: r.AmountDif,
		Side:         splitter.Side(strings.ToUpper(strings.TrimSpace(r.Side))),
		PriceMin:     r.PriceMin,
		PriceMax:     r.PriceMax,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"}, s.logger)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "请求体解析失败: " + err.Error()}, s.logger)
		return
	}

	meta := req.metaOrder()
	s.telemetry.RecordMetaOrder(r.Context(), telemetry.MetaOrderPayload{
		Volume:       meta.Volume,
		StackCount:   meta.StackCount,
		VolumeJitter: meta.VolumeJitter,
		Side:         meta.Side,
		PriceMin:     meta.PriceMin,
		PriceMax:     meta.PriceMax,
	})

	start := time.Now()
	result, err := s.engine.Execute(r.Context(), meta, s.newRand())
	elapsed := time.Since(start)

	if err != nil {
		s.telemetry.RecordFailure(r.Context(), telemetry.FailurePayload{
			Error:   err.Error(),
			Elapsed: elapsed,
		})
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()}, s.logger)
		return
	}

	childOrders := 0
	for _, stack := range result.Stacks {
		childOrders += len(stack)
	}
	s.telemetry.RecordExecution(r.Context(), telemetry.ExecutionPayload{
		Stacks:      len(result.Stacks),
		ChildOrders: childOrders,
		Elapsed:     elapsed,
	})

	writeJSON(w, http.StatusOK, result, s.logger)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"}, s.logger)
		return
	}

	q := r.URL.Query()
	limit := 200
	if qs := q.Get("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			if v > 1000 {
				v = 1000
			}
			limit = v
		}
	}

	eventType := telemetry.EventType("")
	if typ := strings.TrimSpace(q.Get("type")); typ != "" {
		eventType = telemetry.EventType(strings.ToLower(typ))
	}

	events, err := s.telemetry.ListEvents(r.Context(), eventType, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()}, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, events, s.logger)
}

// statusForError 将内部错误类型映射为 HTTP 状态码。
func statusForError(err error) int {
	switch {
	case errors.Is(err, splitter.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, exchange.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, exchange.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("写入响应失败", zap.Error(err))
	}
}
