package mqtt

import "sync"

// libRefs is the process-wide reference count for the underlying MQTT
// client library: acquireLib runs an init func for the first Transport to
// connect, releaseLib runs a teardown func for the last one to close.
// paho.mqtt.golang has no global init/cleanup call of its own (unlike
// libmosquitto, wrapped elsewhere by an mqtt_lib-style class), and
// Transport passes nil for both funcs, so only the count itself is kept.
var (
	libMu   sync.Mutex
	libRefs int
)

// acquireLib increments the shared reference count, running init on the
// transition from 0 to 1.
func acquireLib(init func()) {
	libMu.Lock()
	defer libMu.Unlock()
	libRefs++
	if libRefs == 1 && init != nil {
		init()
	}
}

// releaseLib decrements the shared reference count, running teardown on the
// transition from 1 to 0. Safe to call more times than acquireLib as a
// defensive floor — refcount never goes negative.
func releaseLib(teardown func()) {
	libMu.Lock()
	defer libMu.Unlock()
	if libRefs == 0 {
		return
	}
	libRefs--
	if libRefs == 0 && teardown != nil {
		teardown()
	}
}
