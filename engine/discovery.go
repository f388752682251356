package engine

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/internal/metrics"
	"github.com/msgflo/msgflo-cpp/participant"
	"github.com/msgflo/msgflo-cpp/transport"
)

// fbpDiscoveryDestination is the fixed broker address discovery messages
// are published to.
const fbpDiscoveryDestination = "fbp"

// discoveryLoop publishes each registration's Definition to "fbp" at
// connect time and every intervalSeconds thereafter. Ticks are skipped,
// not queued, while the transport is disconnected.
type discoveryLoop struct {
	intervalSeconds int
	tr              transport.Transport
	registrations   []participant.Registration
	logger          *zap.Logger
	metrics         *metrics.Engine
	lastAnnounce    time.Time
}

func newDiscoveryLoop(intervalSeconds int, tr transport.Transport, registrations []participant.Registration, logger *zap.Logger, m *metrics.Engine) *discoveryLoop {
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	return &discoveryLoop{
		intervalSeconds: intervalSeconds,
		tr:              tr,
		registrations:   registrations,
		logger:          logger,
		metrics:         m,
	}
}

// tick is called once per second from Engine.Launch's loop; it re-announces
// once intervalSeconds have elapsed since the last announcement.
func (d *discoveryLoop) tick() {
	if time.Since(d.lastAnnounce) < time.Duration(d.intervalSeconds)*time.Second {
		return
	}
	d.announceNow()
}

// announceNow publishes discovery for every registration unconditionally,
// used both by tick() and once at connect time.
func (d *discoveryLoop) announceNow() {
	if !d.tr.Connected() {
		d.logger.Debug("skipping discovery announce, transport disconnected")
		return
	}

	for _, reg := range d.registrations {
		msg := transport.NewDiscoveryMessage(reg.Definition)
		body, err := json.Marshal(msg)
		if err != nil {
			d.logger.Error("failed to marshal discovery message", zap.String("role", reg.Definition.Role), zap.Error(err))
			continue
		}
		if err := d.tr.Publish(fbpDiscoveryDestination, body, nil); err != nil {
			d.logger.Warn("failed to publish discovery message", zap.String("role", reg.Definition.Role), zap.Error(err))
			continue
		}
		d.metrics.DiscoveryTicks.Inc()
	}
	d.lastAnnounce = time.Now()
}
