// Package logger provee un logger zap singleton para todo el servicio.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Verify"))
//	log.Info("token verified", logger.PortalKey(portal.SSOKey))
//
// Los middlewares HTTP inyectan un logger "scoped" (request_id, method, path)
// en el contexto; From(ctx) lo recupera o cae al singleton.
package logger
