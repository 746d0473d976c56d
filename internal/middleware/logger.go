package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/user-center/internal/metrics"
)

const maxLoggedBody = 1000

var (
	appLogger *log.Logger

	// redactedFields never reach the log in clear text
	redactedFields = map[string]bool{
		"password":        true,
		"confirmPassword": true,
		"newPassword":     true,
		"securityAnswer":  true,
		"captcha":         true,
	}
)

// InitLogger initializes the file-based logging system
// Logs are saved in logDir as a daily rotated app log
func InitLogger(logDir string) error {
	// Get absolute path for log directory
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		absLogDir = logDir
	}

	// Create logs directory if not exists
	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
	}

	currentDate := time.Now().Format("2006-01-02")

	appLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", currentDate)),
		MaxSize:    10, // 10 MB
		MaxBackups: 30,
		MaxAge:     30, // days
		Compress:   true,
		LocalTime:  true,
	}

	out := io.MultiWriter(os.Stdout, appLogFile)
	appLogger = log.New(out, "", log.LstdFlags)

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	appLogger.Printf("[INFO] Logger initialized, log directory: %s", absLogDir)

	return nil
}

// LogInfo logs info level messages
func LogInfo(format string, v ...interface{}) {
	logf("[INFO] ", format, v...)
}

// LogError logs error level messages
func LogError(format string, v ...interface{}) {
	logf("[ERROR] ", format, v...)
}

func logf(level, format string, v ...interface{}) {
	if appLogger != nil {
		appLogger.Printf(level+format, v...)
	} else {
		log.Printf(level+format, v...)
	}
}

// RequestLoggerMiddleware logs every request with status and latency and
// records the request duration histogram
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(statusCode)).
			Observe(latency.Seconds())

		if statusCode >= 500 {
			LogError("%s %s | status=%d | latency=%v | errors=%s",
				c.Request.Method, fullURL, statusCode, latency, c.Errors.String())
		} else {
			LogInfo("%s %s | status=%d | latency=%v",
				c.Request.Method, fullURL, statusCode, latency)
		}
	}
}

// AuditLoggerMiddleware logs the body of account-changing requests with
// secret fields masked. Use it on register, login, recovery and profile routes.
func AuditLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// Read and restore request body
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		LogInfo("AUDIT %s %s | ip=%s | body=%s",
			c.Request.Method, c.Request.URL.Path, c.ClientIP(), RedactBody(bodyBytes))

		c.Next()

		LogInfo("AUDIT %s %s | status=%d | latency=%v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(startTime))
	}
}

// RedactBody renders a JSON request body for logging with secret fields masked.
// Bodies that are not JSON objects are summarised by size only.
func RedactBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return "(empty)"
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Sprintf("(unparsed, %d bytes)", len(body))
	}
	for k := range fields {
		if redactedFields[k] {
			fields[k] = "***"
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf("(unparsed, %d bytes)", len(body))
	}
	s := string(out)
	if len(s) > maxLoggedBody {
		s = s[:maxLoggedBody] + "..."
	}
	return strings.TrimSpace(s)
}
