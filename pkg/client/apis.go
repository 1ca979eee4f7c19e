package client

import (
	"encoding/json"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/types"
)

func getJSON[T any](c *Client, path string, what string) (*T, error) {
	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get %s", what)
	}

	var v T
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return &v, nil
}

func (c *Client) GetStatus() (*cycle.Status, error) {
	return getJSON[cycle.Status](c, "/status", "cycling status")
}

func (c *Client) GetBattery() (*types.BatteryReport, error) {
	return getJSON[types.BatteryReport](c, "/battery", "battery info")
}

func (c *Client) ReadSMC(key string) (*types.SMCValue, error) {
	return getJSON[types.SMCValue](c, "/smc/"+url.PathEscape(key), "smc key "+key)
}

func (c *Client) WriteSMC(key string, hexValue string) error {
	_, err := c.Put("/smc/"+url.PathEscape(key), hexValue)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to write smc key %s", key)
	}
	return nil
}

func (c *Client) GetHistory(limit int) ([]history.Reading, error) {
	r, err := getJSON[[]history.Reading](c, "/history?limit="+strconv.Itoa(limit), "history")
	if err != nil {
		return nil, err
	}
	return *r, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	return getJSON[config.RawFileConfig](c, "/config", "config")
}

func (c *Client) GetVersion() (string, error) {
	v, err := getJSON[string](c, "/version", "version")
	if err != nil {
		return "", err
	}
	return *v, nil
}
