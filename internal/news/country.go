package news

import (
	"net/url"
	"strings"

	"github.com/i474232898/weather-news-aggregation/internal/common"
)

const International = "International"

type countryRule struct {
	country  string
	suffixes []string
	contains []string
}

// First matching rule wins.
var countryRules = []countryRule{
	{"India", []string{".in"}, []string{"timesofindia", "indiatoday", "hindustantimes", "indianexpress", "mausam.imd"}},
	{"United Kingdom", []string{".uk"}, []string{"bbc.", "theguardian.", "metoffice.gov.uk"}},
	{"Australia", []string{".au"}, []string{"abc.net.au", "bom.gov.au"}},
	{"New Zealand", []string{".nz"}, []string{"nzherald"}},
	{"Canada", []string{".ca"}, []string{"cbc.ca"}},
	{"Japan", []string{".jp"}, []string{"japantimes"}},
	{"Singapore", []string{".sg"}, []string{"straitstimes"}},
	{"UAE", []string{".ae"}, []string{"gulfnews"}},
	{"Qatar / Middle East", nil, []string{"aljazeera"}},
	{"Europe", nil, []string{"euronews", "dw.com"}},
	{"United States", nil, []string{"noaa.gov", "weather.com", "apnews", "cnn.", "reuters.com"}},
}

// InferCountry maps an article link to a region by its host name.
func InferCountry(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Hostname() == "" {
		return International
	}
	host := strings.ToLower(u.Hostname())

	for _, rule := range countryRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(host, suffix) {
				return rule.country
			}
		}
		if common.HasAny(host, rule.contains...) {
			return rule.country
		}
	}
	return International
}
