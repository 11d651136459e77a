// Package fetch - provider.go identifies job board providers and their
// scraping selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Provider represents a known job board provider.
type Provider string

const (
	// ProviderGreenhouse is the Greenhouse ATS
	ProviderGreenhouse Provider = "greenhouse"
	// ProviderAshby is the Ashby ATS
	ProviderAshby Provider = "ashby"
	// ProviderLever is the Lever ATS
	ProviderLever Provider = "lever"
	// ProviderWorkday is the Workday ATS
	ProviderWorkday Provider = "workday"
	// ProviderAvature is the Avature ATS
	ProviderAvature Provider = "avature"
	// ProviderUnknown is a generic career page
	ProviderUnknown Provider = "unknown"
)

// DetectProvider identifies the job board provider from a URL.
func DetectProvider(urlStr string) Provider {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ProviderUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "greenhouse.io"):
		return ProviderGreenhouse
	case strings.Contains(host, "ashbyhq.com"):
		return ProviderAshby
	case strings.Contains(host, "lever.co"):
		return ProviderLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return ProviderWorkday
	case strings.Contains(host, "avature.net"):
		return ProviderAvature
	}
	return ProviderUnknown
}

// ContentSelectors returns description selectors for a provider's pages.
func ContentSelectors(provider Provider) []string {
	switch provider {
	case ProviderGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		}
	case ProviderAshby:
		return []string{
			"[class*='JobPosting_description']",
			".ashby-job-posting-content",
			"#overview",
			"main",
		}
	case ProviderLever:
		return []string{
			".posting-page",
			".section-wrapper.page-full-width",
			".posting-description",
			".content",
		}
	case ProviderWorkday:
		return []string{
			"[data-automation-id='jobDescription']",
			".WDXK",
			".gwt-HTML",
			".job-description",
		}
	case ProviderAvature:
		return []string{
			".jobDetails",
			".article--details",
			".job-description",
			"main",
		}
	default:
		return []string{
			".job-description",
			".job-content",
			"#job-description",
			".posting-content",
			".job-details",
			"[data-testid='job-description']",
			"main",
			"article",
			".content",
			"#content",
		}
	}
}

// NoiseSelectors returns elements to strip before text extraction.
func NoiseSelectors(provider Provider) []string {
	common := []string{
		"form",
		"#application-form",
		".application-form",
		".apply-button-container",
		".voluntary-disclosure",
		".eeo-statement",
		".self-identification",
		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch provider {
	case ProviderGreenhouse:
		return append(common,
			".application--wrapper",
			".voluntary-self-id",
			"#usa_self_id_section",
			".post-apply",
		)
	case ProviderAshby:
		return append(common,
			"[class*='ApplicationForm']",
			"[class*='JobBoard_nav']",
		)
	case ProviderLever:
		return append(common,
			".apply-section",
			".lever-application-form",
			".posting-apply",
		)
	case ProviderWorkday:
		return append(common,
			"[data-automation-id='applyButton']",
			".application-section",
		)
	default:
		return common
	}
}
