package engine

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/msgflo/msgflo-cpp/internal/config"
)

// Scheme identifies which transport a broker URL selects.
type Scheme int

const (
	SchemeAMQP Scheme = iota
	SchemeMQTT
)

// MQTTOptions is the parsed form of an mqtt:// broker URL.
type MQTTOptions struct {
	Host         string
	Port         int
	Username     string
	Password     string
	KeepAlive    int
	ClientID     string
	CleanSession bool
}

// BrokerURL is the result of dispatching a broker URL to its transport:
// exactly one of AMQPURL / MQTT is populated, selected by Scheme.
type BrokerURL struct {
	Scheme  Scheme
	AMQPURL string
	MQTT    MQTTOptions
}

const defaultMQTTPort = 1883
const defaultMQTTKeepAlive = 180

// ResolveBrokerURL resolves the effective broker URL: an empty rawURL
// falls back to MSGFLO_BROKER, then the scheme prefix selects and
// configures a transport.
func ResolveBrokerURL(rawURL string) (BrokerURL, error) {
	if rawURL == "" {
		rawURL = config.GetEnv("MSGFLO_BROKER", "")
	}
	if rawURL == "" {
		return BrokerURL{}, errMissingConfig("no broker URL supplied and MSGFLO_BROKER is unset")
	}

	switch {
	case hasScheme(rawURL, "amqp"):
		return BrokerURL{Scheme: SchemeAMQP, AMQPURL: rawURL}, nil
	case hasScheme(rawURL, "mqtt"):
		opts, err := parseMQTTURL(rawURL)
		if err != nil {
			return BrokerURL{}, err
		}
		return BrokerURL{Scheme: SchemeMQTT, MQTT: opts}, nil
	default:
		return BrokerURL{}, errUnsupportedScheme(fmt.Sprintf("unsupported broker URL scheme in %q", rawURL))
	}
}

func hasScheme(rawURL, scheme string) bool {
	return len(rawURL) > len(scheme)+2 && rawURL[:len(scheme)+3] == scheme+"://"
}

// parseMQTTURL parses "mqtt://[user[:pass]@]host[?key=value&...]", reading
// keepAlive, clientId, and cleanSession from the query string.
func parseMQTTURL(rawURL string) (MQTTOptions, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return MQTTOptions{}, errInvalidConfig("malformed mqtt URL", err)
	}

	opts := MQTTOptions{
		Host:         u.Hostname(),
		Port:         defaultMQTTPort,
		KeepAlive:    defaultMQTTKeepAlive,
		CleanSession: true,
	}

	if u.User != nil {
		opts.Username = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			opts.Password = pass
		}
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return MQTTOptions{}, errInvalidConfig(fmt.Sprintf("invalid port %q", p), err)
		}
		opts.Port = port
	}

	query := u.Query()

	if v := query.Get("keepAlive"); v != "" {
		ka, err := strconv.Atoi(v)
		if err != nil || ka <= 0 || ka > 2147483647 {
			return MQTTOptions{}, errInvalidConfig(fmt.Sprintf("invalid keepAlive %q", v), nil)
		}
		opts.KeepAlive = ka
	}

	if v := query.Get("clientId"); v != "" {
		opts.ClientID = v
	}

	if v := query.Get("cleanSession"); v != "" {
		opts.CleanSession = !isFalsy(v)
	}

	if opts.ClientID == "" && !opts.CleanSession {
		return MQTTOptions{}, errInvalidConfig("cleanSession must be true when clientId is empty", nil)
	}

	return opts, nil
}

func isFalsy(v string) bool {
	switch v {
	case "0", "no", "false":
		return true
	default:
		return false
	}
}
