package appconfig

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// WorkerHeartbeatURLMap maps a worker name to the URL it pings after every successful run.
// It is decoded from `name:base64url,name:base64url`.
type WorkerHeartbeatURLMap map[string]string

func (m *WorkerHeartbeatURLMap) Decode(value string) error {
	*m = WorkerHeartbeatURLMap{}
	if strings.TrimSpace(value) == "" {
		return nil
	}
	for _, pair := range strings.Split(value, ",") {
		name, encoded, ok := strings.Cut(pair, ":")
		if !ok || strings.Contains(encoded, ":") {
			return errors.Errorf("invalid heartbeat URL map: expected `name:base64url`, got %q", pair)
		}
		url, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return errors.Wrapf(err, "invalid heartbeat URL for %q", strings.TrimSpace(name))
		}
		(*m)[strings.TrimSpace(name)] = string(url)
	}
	return nil
}
