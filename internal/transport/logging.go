package transport

import (
	"log/slog"
)

// Logging logs every settled request at debug level
func Logging(logger *slog.Logger) ResponseMiddleware {
	return func(res *Response) (*Response, error) {
		attrs := []any{
			slog.String("method", res.Request.Method),
			slog.String("path", res.Request.URL.Path),
			slog.Int("status", res.StatusCode),
			slog.Int("size", len(res.Body)),
			slog.Duration("duration", res.Duration),
			slog.String("request_id", res.Request.Header.Get(RequestIDHeader)),
		}
		if res.Err != nil {
			attrs = append(attrs, slog.String("error", res.Err.Error()))
		}

		logger.Debug("http request", attrs...)
		return res, nil
	}
}
