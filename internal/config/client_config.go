package config

import (
	"strconv"
	"time"
)

const (
	timeoutVar     = "BLOG_TIMEOUT"
	rateLimitVar   = "BLOG_RATE_LIMIT"
	rateBurstVar   = "BLOG_RATE_BURST"
	taxonomyTTLVar = "BLOG_TAXONOMY_TTL"
	refreshSkewVar = "BLOG_REFRESH_SKEW"
	pageSizeVar    = "BLOG_PAGE_SIZE"
)

type ClientConfig interface {
	GetTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
	GetTaxonomyTTL() time.Duration
	GetRefreshSkew() time.Duration
	GetPageSize() int
}

type Client struct {
	profile Profile
}

var _ ClientConfig = Client{}

func (c Client) GetTimeout() time.Duration {
	return GetEnvDuration(timeoutVar, profileDuration(c.profile.Timeout, 10*time.Second))
}

// GetRateLimit is the outbound request rate in requests per second. Zero disables limiting.
func (c Client) GetRateLimit() float64 {
	def := 0.0
	if f, err := strconv.ParseFloat(c.profile.RateLimit, 64); err == nil {
		def = f
	}
	return GetEnvFloat(rateLimitVar, def)
}

func (c Client) GetRateBurst() int {
	def := 1
	if i, err := strconv.Atoi(c.profile.RateBurst); err == nil {
		def = i
	}
	return GetEnvInt(rateBurstVar, def)
}

func (c Client) GetTaxonomyTTL() time.Duration {
	return GetEnvDuration(taxonomyTTLVar, profileDuration(c.profile.TaxonomyTTL, 5*time.Minute))
}

// GetRefreshSkew is how long before a JWT access token expires that it is refreshed proactively.
func (c Client) GetRefreshSkew() time.Duration {
	return GetEnvDuration(refreshSkewVar, profileDuration(c.profile.RefreshSkew, 30*time.Second))
}

func (c Client) GetPageSize() int {
	def := 10
	if i, err := strconv.Atoi(c.profile.PageSize); err == nil && i > 0 {
		def = i
	}
	return GetEnvInt(pageSizeVar, def)
}

func profileDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
