package main

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

const uploadLimit = "20M"

// NewServer registers the form page and the API routes on a new echo instance.
func NewServer(pipeline Pipeline, logger *zap.Logger, loglevel string, runTimeout time.Duration) (*echo.Echo, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(err, c)
		logger.Debug("request failed", zap.Error(err))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(uploadLimit))
	e.Use(LogHandlerFunc(logger))

	e.GET("/", IndexHandler(index))
	e.GET("/organisms", OrganismsHandler())
	e.POST("/columns", ColumnsHandler())
	e.POST("/analyze", AnalyzeHandler(pipeline, runTimeout))
	return e, nil
}

// LogHandlerFunc logs each request and its outcome.
func LogHandlerFunc(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			req := c.Request()
			err := next(c)
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(begin)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			logger.Info("request", fields...)
			return err
		}
	}
}

// SetLevel applies a textual log level to echo's own logger.
func SetLevel(e *echo.Echo, loglevel string) {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s. falling back to warn", loglevel)
	}
}
