package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sendgrid/sendgrid-go/helpers/eventwebhook"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/response"
)

const TwilioSignatureHeader = "X-Twilio-Signature"

// RawBodyKey is the echo context key holding the request body as received.
const RawBodyKey = "rawBody"

// CaptureRawBody reads the body once, stores it under RawBodyKey and restores
// it so handlers can still bind it.
func CaptureRawBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := rawBody(c); err != nil {
				return response.Error(c, domain.NewValidationError("Unable to read request body", nil))
			}
			return next(c)
		}
	}
}

func rawBody(c echo.Context) ([]byte, error) {
	if b, ok := c.Get(RawBodyKey).([]byte); ok {
		return b, nil
	}

	req := c.Request()
	if req.Body == nil {
		c.Set(RawBodyKey, []byte{})
		return []byte{}, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))

	c.Set(RawBodyKey, body)
	return body, nil
}

// TwilioSignature rejects Twilio callbacks whose X-Twilio-Signature does not
// match HMAC-SHA1(authToken, URL + sorted params). Verification is skipped
// when authToken is empty or skip is set.
func TwilioSignature(authToken, publicBaseURL string, skip bool) echo.MiddlewareFunc {
	if skip || authToken == "" {
		logger.Warnf("Twilio webhook signature verification is disabled")
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			signature := c.Request().Header.Get(TwilioSignatureHeader)
			if signature == "" {
				return response.Error(c, &domain.AuthenticationError{Message: "Missing Twilio signature"})
			}

			body, err := rawBody(c)
			if err != nil {
				return response.Error(c, domain.NewValidationError("Unable to read request body", nil))
			}

			params, err := signatureParams(c.Request().Header.Get(echo.HeaderContentType), body)
			if err != nil {
				return response.Error(c, &domain.AuthenticationError{Message: "Invalid Twilio signature"})
			}

			payload := buildSignaturePayload(webhookURL(c, publicBaseURL), params)
			expected := computeSignature(payload, authToken)

			if !hmac.Equal([]byte(signature), []byte(expected)) {
				logger.Warn().Str("uri", c.Request().RequestURI).Msg("Twilio signature mismatch")
				return response.Error(c, &domain.AuthenticationError{Message: "Invalid Twilio signature"})
			}

			return next(c)
		}
	}
}

// signatureParams extracts the signed parameters from a form or flat JSON body.
func signatureParams(contentType string, body []byte) (url.Values, error) {
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var fields map[string]any
		if len(body) == 0 {
			return url.Values{}, nil
		}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse json body: %w", err)
		}

		params := url.Values{}
		for k, v := range fields {
			switch val := v.(type) {
			case nil:
				params.Set(k, "")
			case string:
				params.Set(k, val)
			default:
				params.Set(k, fmt.Sprint(val))
			}
		}
		return params, nil
	}

	return url.ParseQuery(string(body))
}

// webhookURL is the URL Twilio signed: the configured public base URL, or the
// forwarded scheme and host, followed by the request URI.
func webhookURL(c echo.Context, publicBaseURL string) string {
	req := c.Request()
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/") + req.RequestURI
	}

	scheme := req.Header.Get(echo.HeaderXForwardedProto)
	if scheme == "" {
		scheme = c.Scheme()
	}
	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}

	return scheme + "://" + host + req.RequestURI
}

func buildSignaturePayload(u string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(u)

	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}

	return payload.String()
}

func computeSignature(data, key string) string {
	h := hmac.New(sha1.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// SendGridSignature verifies the ECDSA signature SendGrid puts on signed event
// webhooks, over the timestamp header followed by the raw body, and rejects
// timestamps older than maxAge.
func SendGridSignature(publicKeyBase64 string, maxAge time.Duration, skip bool) echo.MiddlewareFunc {
	return sendGridSignature(publicKeyBase64, maxAge, skip, time.Now)
}

func sendGridSignature(publicKeyBase64 string, maxAge time.Duration, skip bool, now func() time.Time) echo.MiddlewareFunc {
	if skip || publicKeyBase64 == "" {
		logger.Warnf("SendGrid webhook signature verification is disabled")
		return passThrough
	}

	publicKey, err := eventwebhook.ConvertPublicKeyBase64ToECDSA(publicKeyBase64)
	if err != nil {
		logger.Errorf("Invalid SendGrid webhook public key: %v", err)
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.Error(c, fmt.Errorf("sendgrid webhook public key is invalid: %w", err))
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			signature := c.Request().Header.Get(eventwebhook.VerificationHTTPHeader)
			timestamp := c.Request().Header.Get(eventwebhook.TimestampHTTPHeader)
			if signature == "" || timestamp == "" {
				return response.Error(c, &domain.AuthenticationError{Message: "Missing SendGrid signature"})
			}

			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return response.Error(c, &domain.AuthenticationError{Message: "Invalid SendGrid timestamp"})
			}
			age := now().Sub(time.Unix(ts, 0))
			if age > maxAge || age < -maxAge {
				return response.Error(c, &domain.AuthenticationError{Message: "SendGrid timestamp outside allowed window"})
			}

			body, err := rawBody(c)
			if err != nil {
				return response.Error(c, domain.NewValidationError("Unable to read request body", nil))
			}

			ok, err := eventwebhook.VerifySignature(publicKey, body, signature, timestamp)
			if err != nil || !ok {
				logger.Warn().Err(err).Str("uri", c.Request().RequestURI).Msg("SendGrid signature mismatch")
				return response.Error(c, &domain.AuthenticationError{Message: "Invalid SendGrid signature"})
			}

			return next(c)
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
