/*
Package middleware provides cross-cutting HTTP helpers.

  - WithLogging: request start/completion logging via slog
  - CORS: origin filtering from the ALLOW_ORIGINS setting (with "*" wildcard)
  - JSONResponse / ErrorResponse: structured JSON bodies, errors as
    {error, message}
  - ParseJSONBody: request body decoding
  - GetClientIP: X-Forwarded-For / X-Real-IP / RemoteAddr resolution
  - RequestLanguage: primary Accept-Language tag for per-language image dirs
*/
package middleware
