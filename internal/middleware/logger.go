package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs one line per request through zap. Server errors are
// logged at error level, everything else at info.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Status >= 500 {
				level = zapcore.ErrorLevel
			}
			fields := []zap.Field{
				zap.String("uri", v.URI),
				zap.String("method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if uid := c.Get(KeyUserID); uid != nil {
				fields = append(fields, zap.Any("user_id", uid))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Log(level, "request", fields...)
			return nil
		},
	})
}
