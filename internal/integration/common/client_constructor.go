package common

import (
	"strings"

	"github.com/futig/knowledge-backend/internal/config"
	pkgHTTP "github.com/futig/knowledge-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a provider connector from its client settings.
// Credentials are attached only when configured.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: strings.TrimRight(cfg.Url, "/"),
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithTLSHandshakeTimeout(cfg.TLSHandshakeTimeout),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithRequestLogging(),
	}
	if cfg.Token != "" {
		opts = append(opts, pkgHTTP.WithAuthToken(cfg.Token))
	}
	if cfg.APIKey != "" {
		opts = append(opts, pkgHTTP.WithAPIKey(cfg.APIKey))
	}

	return pkgHTTP.NewConnector(connCfg, opts...)
}
