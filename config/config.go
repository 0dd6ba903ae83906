package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	BIND_ADDRESS      = "0.0.0.0:8080"
	TLS_DOMAINS       = ""   // e.g. "example.com,example2.com"
	DEBUG_MODE        = true
	LOG_MODE          = "dev" // "prod" for JSON logs
	MYSQL_DSN         = ""    // MySQL will be used if this is set
	SQLITE_FILE       = "invitetrack.db"
	PLATFORM_API_BASE = "https://discord.com/api/v10"
	PLATFORM_TOKEN    = "" // bot token used to list guild invites
	FETCH_TIMEOUT     = 10 * time.Second
	// Guilds to load invites for on startup, so the first join after a restart can be attributed
	WARM_COMMUNITIES = []string{}
	WARM_CONCURRENCY = 4
	RELAY_SECRET     = "" // if set, event requests must carry it in X-Relay-Secret
	REDIS_ADDR       = "" // publish attributions to Redis if set
	REDIS_CHANNEL    = "invitetrack:attributions"
	WEBHOOK_URL      = "" // POST attributions to this URL if set
)

func init() {
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("LOG_MODE", &LOG_MODE)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("PLATFORM_API_BASE", &PLATFORM_API_BASE)
	readEnvString("PLATFORM_TOKEN", &PLATFORM_TOKEN)
	readEnvDuration("FETCH_TIMEOUT", &FETCH_TIMEOUT)
	readEnvList("WARM_COMMUNITIES", &WARM_COMMUNITIES)
	readEnvInt("WARM_CONCURRENCY", &WARM_CONCURRENCY)
	readEnvString("RELAY_SECRET", &RELAY_SECRET)
	readEnvString("REDIS_ADDR", &REDIS_ADDR)
	readEnvString("REDIS_CHANNEL", &REDIS_CHANNEL)
	readEnvString("WEBHOOK_URL", &WEBHOOK_URL)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}

// readEnvDuration accepts "1500ms", "10s" etc., or a plain number of seconds
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*value = d
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*value = time.Duration(secs) * time.Second
	}
}

// readEnvList reads a comma separated list, empty items are skipped
func readEnvList(name string, value *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	result := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	*value = result
}
