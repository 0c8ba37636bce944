package admin

import "github.com/futig/knowledge-backend/internal/entity"

type Registry interface {
	Metrics() entity.Metrics
	Settings() entity.AdminSettings
	UpdateSettings(upd entity.SettingsUpdate) (entity.AdminSettings, error)
}
