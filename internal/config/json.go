package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/subtrack/internal/flagx"
	"github.com/dmitrijs2005/subtrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the provider timeout either as a string
// like "5s" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config.
type JsonConfig struct {
	DatabaseDSN       *string         `json:"database_dsn"`
	CachePath         *string         `json:"cache_path"`
	ProviderBaseURL   *string         `json:"provider_base_url"`
	ProviderTimeout   *timex.Duration `json:"provider_timeout"`
	RenewalWindowDays *int            `json:"renewal_window_days"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, no JSON is loaded.
// Only fields present in the file override the current values. Panics on
// read or unmarshal errors, matching the fail-fast startup policy.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.CachePath != nil {
		cfg.CachePath = *jc.CachePath
	}
	if jc.ProviderBaseURL != nil {
		cfg.ProviderBaseURL = *jc.ProviderBaseURL
	}
	if jc.ProviderTimeout != nil {
		cfg.ProviderTimeout = time.Duration(jc.ProviderTimeout.Duration)
	}
	if jc.RenewalWindowDays != nil {
		cfg.RenewalWindowDays = *jc.RenewalWindowDays
	}
}
