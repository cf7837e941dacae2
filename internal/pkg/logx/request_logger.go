/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains the HTTP middleware that logs the request lifecycle (URI, method,
status, latency) with an anonymized client address.
*/
package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// AnonymizeIP zeroes the last IPv4 octet or the lower half of an IPv6 address.
// Approximate location survives, the individual host does not.
func AnonymizeIP(ipStr string) string {
	host, _, err := net.SplitHostPort(ipStr)
	if err == nil {
		ipStr = host
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "unknown_ip"
	}

	if ip.IsLoopback() {
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}

	return ip.Mask(net.CIDRMask(64, 128)).String()
}

// RequestLogger returns middleware that logs every HTTP request once it completes.
// The request-scoped logger is stored in the request context for handlers to reuse.
func RequestLogger() func(next http.Handler) http.Handler {
	baseLogger := Logger()

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger := baseLogger.With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", AnonymizeIP(r.RemoteAddr)).
				Str("request_method", r.Method).
				Str("request_path", r.URL.Path).
				Logger()

			r = r.WithContext(logger.WithContext(r.Context()))

			started := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()

			logEvent := logger.Info()
			if status >= 500 {
				logEvent = logger.Error()
			} else if status >= 400 {
				logEvent = logger.Warn()
			}

			logEvent.
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(started)).
				Msg("Request completed")
		}

		return http.HandlerFunc(fn)
	}
}
