package dashboard

import "strings"

// DefaultEChartsAssetsHost is where go-echarts publishes its runtime and themes.
const DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// EChartsAssetsHost returns host with a trailing slash, or the default host when empty.
func EChartsAssetsHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return DefaultEChartsAssetsHost
	}
	return ensureTrailingSlash(host)
}

// EChartsScriptURL is the runtime script the page loads before any chart markup.
func EChartsScriptURL(host string) string {
	return EChartsAssetsHost(host) + "echarts.min.js"
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
