package daemon

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/smc"
	"github.com/battcycle/battcycle/pkg/types"
	"github.com/battcycle/battcycle/pkg/version"
)

const (
	defaultHistoryLimit = 60
	maxHistoryLimit     = 10000
)

var (
	errNotCycling = errors.New("cycling loop is not running")
	errNoHistory  = errors.New("history is not enabled")
	errNoConfig   = errors.New("no configuration loaded")
	errSMCWrite   = errors.New("smc writes are disabled, set allowSMCWrite in the config to enable them")
)

func (s *Server) getStatus(c *gin.Context) {
	if s.opts.Status == nil {
		abort(c, http.StatusServiceUnavailable, errNotCycling)
		return
	}
	c.IndentedJSON(http.StatusOK, s.opts.Status.Status())
}

func (s *Server) getBattery(c *gin.Context) {
	report := types.NewBatteryReport(s.opts.Fetch())

	charge, err := s.opts.SystemCharge()
	if err != nil {
		logrus.WithError(err).Debug("system charge unavailable")
	} else {
		report.SystemCharge = &charge
	}

	c.IndentedJSON(http.StatusOK, report)
}

func (s *Server) getSMCKey(c *gin.Context) {
	key := c.Param("key")

	v, err := s.opts.SMC.Read(key)
	if err != nil {
		logrus.WithField("key", key).Errorf("getSMCKey failed: %v", err)
		abort(c, smcStatusCode(err), err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.NewSMCValue(v))
}

func (s *Server) setSMCKey(c *gin.Context) {
	if s.opts.Config == nil || !s.opts.Config.AllowSMCWrite() {
		abort(c, http.StatusForbidden, errSMCWrite)
		return
	}

	key := c.Param("key")
	body, err := c.GetRawData()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	hexValue := strings.Trim(strings.TrimSpace(string(body)), `"`)

	if err := s.opts.SMC.WriteKey(key, hexValue); err != nil {
		logrus.WithFields(logrus.Fields{
			"key": key,
			"val": hexValue,
		}).Errorf("setSMCKey failed: %v", err)
		abort(c, smcStatusCode(err), err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": hexValue,
	}).Info("smc key written")

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (s *Server) getHistory(c *gin.Context) {
	if s.opts.History == nil {
		abort(c, http.StatusServiceUnavailable, errNoHistory)
		return
	}

	limit := defaultHistoryLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxHistoryLimit {
			abort(c, http.StatusBadRequest, pkgerrors.Errorf("limit must be between 1 and %d, got %q", maxHistoryLimit, q))
			return
		}
		limit = n
	}

	readings, err := s.opts.History.Recent(limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, readings)
}

func (s *Server) getConfig(c *gin.Context) {
	if s.opts.Config == nil {
		abort(c, http.StatusServiceUnavailable, errNoConfig)
		return
	}

	fc, err := config.NewRawFileConfigFromConfig(s.opts.Config)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func smcStatusCode(err error) int {
	switch {
	case errors.Is(err, smc.ErrInvalidKey), errors.Is(err, smc.ErrInvalidHex), errors.Is(err, smc.ErrSizeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, smc.ErrKeyRead):
		return http.StatusNotFound
	case errors.Is(err, smc.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
