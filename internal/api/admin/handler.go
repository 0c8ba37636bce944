package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	"github.com/futig/knowledge-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	registry Registry
}

func NewHandler(registry Registry) *Handler {
	return &Handler{registry: registry}
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, &entity.StatsResponse{
		Metrics:  h.registry.Metrics(),
		Settings: h.registry.Settings(),
	})
}

// UpdateSettings handles POST /admin/settings.
// Fields of the wrong JSON type are ignored; values breaking the settings invariants reject the whole update.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UpdateSettings")

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ctxzap.Warn(ctx, "failed to decode settings body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid settings payload", err.Error())
		return
	}

	settings, err := h.registry.UpdateSettings(toSettingsUpdate(body))
	if err != nil {
		if errors.Is(err, entity.ErrInvalidSettings) {
			response.Error(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		ctxzap.Error(ctx, "failed to update settings", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	ctxzap.Info(ctx, "settings updated",
		zap.Int("default_top_k", settings.DefaultTopK),
		zap.Int("max_top_k", settings.MaxTopK),
		zap.Bool("enable_logging", settings.EnableLogging),
	)

	response.Success(w, &entity.UpdateSettingsResponse{
		OK:       true,
		Settings: settings,
	})
}

func toSettingsUpdate(body map[string]json.RawMessage) entity.SettingsUpdate {
	var upd entity.SettingsUpdate

	upd.DefaultTopK = intField(body["defaultTopK"])
	upd.MaxTopK = intField(body["maxTopK"])

	var enable bool
	if raw, ok := body["enableLogging"]; ok && isJSONBool(raw) && json.Unmarshal(raw, &enable) == nil {
		upd.EnableLogging = &enable
	}

	var prompt string
	if raw, ok := body["ragSystemPrompt"]; ok && json.Unmarshal(raw, &prompt) == nil {
		if prompt = strings.TrimSpace(prompt); prompt != "" {
			upd.RagSystemPrompt = &prompt
		}
	}

	return upd
}

// intField returns the value of an integral JSON number, nil for anything else
func intField(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}

	v := int(f)
	return &v
}

func isJSONBool(raw json.RawMessage) bool {
	s := string(bytes.TrimSpace(raw))
	return s == "true" || s == "false"
}
