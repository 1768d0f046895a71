package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Logger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// LogLevel is any level name logrus.ParseLevel accepts. Unknown names fall
// back to info.
type LogLevel string

type contextKey string

// Context keys understood by WithContext.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

type Config struct {
	Level      LogLevel `json:"level"`
	Format     string   `json:"format"` // json, text
	Output     string   `json:"output"` // stdout, stderr, file path
	TimeFormat string   `json:"time_format"`
	Caller     bool     `json:"caller"`
	Colors     bool     `json:"colors"`
	AppName    string   `json:"app_name"`
	Version    string   `json:"version"`
}

func NewLogger(config *Config) (*Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.Format == "json" {
		logger.SetFormatter(&CustomJSONFormatter{
			TimestampFormat: config.TimeFormat,
			AppName:         config.AppName,
			Version:         config.Version,
		})
	} else {
		logger.SetFormatter(&CustomTextFormatter{
			TimestampFormat: config.TimeFormat,
			ForceColors:     config.Colors,
			DisableColors:   !config.Colors,
			AppName:         config.AppName,
		})
	}

	switch config.Output {
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "stdout", "":
		logger.SetOutput(os.Stdout)
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		logger.SetOutput(file)
	}

	logger.SetReportCaller(config.Caller)

	return &Logger{
		logger: logger,
		fields: make(logrus.Fields),
	}, nil
}

// NewWriterLogger writes JSON lines at debug level to w.
func NewWriterLogger(w io.Writer) *Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{
		logger: logger,
		fields: make(logrus.Fields),
	}
}

// NewNopLogger returns a logger that discards everything. Used by tests and
// by components constructed without a logger.
func NewNopLogger() *Logger {
	return NewWriterLogger(io.Discard)
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &Logger{
		logger: l.logger,
		fields: newFields,
	}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		logger: l.logger,
		fields: newFields,
	}
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.WithFields(extractContextFields(ctx))
}

func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) WithUserID(userID primitive.ObjectID) *Logger {
	return l.WithField("user_id", userID.Hex())
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithField("request_id", requestID)
}

func (l *Logger) Debug(msg string) {
	l.logger.WithFields(l.fields).Debug(msg)
}

func (l *Logger) Info(msg string) {
	l.logger.WithFields(l.fields).Info(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.WithFields(l.fields).Infof(format, args...)
}

func (l *Logger) Warn(msg string) {
	l.logger.WithFields(l.fields).Warn(msg)
}

func (l *Logger) Error(msg string) {
	l.logger.WithFields(l.fields).Error(msg)
}

func (l *Logger) Fatal(msg string) {
	l.logger.WithFields(l.fields).Fatal(msg)
}

// event merges details over the typed base fields. Base fields win so a
// caller cannot relabel the event type.
func (l *Logger) event(eventType string, base, details map[string]interface{}) *Logger {
	fields := make(map[string]interface{}, len(base)+len(details)+1)
	for k, v := range details {
		fields[k] = v
	}
	for k, v := range base {
		fields[k] = v
	}
	fields["type"] = eventType
	return l.WithFields(fields)
}

func (l *Logger) LogUserAction(userID primitive.ObjectID, action string, details map[string]interface{}) {
	l.event("user_action", map[string]interface{}{
		"user_id": userID.Hex(),
		"action":  action,
	}, details).Info("User action performed")
}

// LogRatingEvent records a rating lifecycle change against the ratee.
func (l *Logger) LogRatingEvent(ratingID, rateeID primitive.ObjectID, event string, details map[string]interface{}) {
	l.event("rating_event", map[string]interface{}{
		"rating_id":     ratingID.Hex(),
		"rated_user_id": rateeID.Hex(),
		"event":         event,
	}, details).Info("Rating event occurred")
}

func (l *Logger) LogAPIRequest(method, route string, statusCode int, duration time.Duration, userID *primitive.ObjectID) {
	base := map[string]interface{}{
		"method":      method,
		"route":       route,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if userID != nil {
		base["user_id"] = userID.Hex()
	}

	entry := l.event("api_request", base, nil)
	switch {
	case statusCode >= 500:
		entry.Error("API request processed")
	case statusCode >= 400:
		entry.Warn("API request processed")
	default:
		entry.Info("API request processed")
	}
}

// LogSecurityEvent logs failed logins, rejected tokens and moderation
// actions. "high" and "critical" go out at error level.
func (l *Logger) LogSecurityEvent(eventType string, severity string, details map[string]interface{}) {
	entry := l.event("security_event", map[string]interface{}{
		"event_type": eventType,
		"severity":   severity,
	}, details)

	if severity == "high" || severity == "critical" {
		entry.Error("Security event detected")
		return
	}
	entry.Warn("Security event detected")
}

// Entry exposes the logger as a logrus entry for packages that take one
// directly, such as the migrator.
func (l *Logger) Entry() *logrus.Entry {
	return l.logger.WithFields(l.fields)
}

func extractContextFields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if ctx == nil {
		return fields
	}

	if userID := ctx.Value(UserIDKey); userID != nil {
		if oid, ok := userID.(primitive.ObjectID); ok {
			fields["user_id"] = oid.Hex()
		} else if str, ok := userID.(string); ok {
			fields["user_id"] = str
		}
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields["request_id"] = requestID
	}

	return fields
}
