package providers

import "strings"

// Keys recognised in a provider's free-form config block.
const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigAPIKeyHeaderKey   = "api_key_header"
)

// headerKeys maps config keys to the HTTP header they populate.
var headerKeys = map[string]string{
	ConfigUserAgentKey:      "User-Agent",
	ConfigAcceptKey:         "Accept",
	ConfigAcceptLanguageKey: "Accept-Language",
}

// ConfigString returns cfg.Config[key] trimmed, or fallback when it is unset,
// blank or not a string.
func ConfigString(cfg Provider, key, fallback string) string {
	val, _ := cfg.Config[key].(string)
	if val = strings.TrimSpace(val); val == "" {
		return fallback
	}
	return val
}

// Headers collects request headers from the provider config. Blank values are
// skipped. When api_key_header names a header, the resolved key is sent in it.
func Headers(cfg Provider) map[string]string {
	headers := make(map[string]string, len(headerKeys)+1)
	for key, header := range headerKeys {
		if v := ConfigString(cfg, key, ""); v != "" {
			headers[header] = v
		}
	}
	if name := ConfigString(cfg, ConfigAPIKeyHeaderKey, ""); name != "" {
		if key := cfg.ResolveAPIKey(); key != "" {
			headers[name] = key
		}
	}
	return headers
}
