package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BradenHooton/lumina/internal/models"
)

// TrustedDomain is a high-trust source used to replace every third candidate
type TrustedDomain struct {
	Domain    string
	Favicon   string
	Relevance int
}

// TrustedDomains is the pool drawn from during trusted-domain substitution
var TrustedDomains = []TrustedDomain{
	{"github.com", "https://github.com/favicon.ico", 95},
	{"stackoverflow.com", "https://stackoverflow.com/favicon.ico", 92},
	{"developer.mozilla.org", "https://developer.mozilla.org/favicon.ico", 98},
	{"w3schools.com", "https://www.w3schools.com/favicon.ico", 90},
	{"harvard.edu", "https://www.harvard.edu/favicon.ico", 97},
	{"mit.edu", "https://www.mit.edu/favicon.ico", 96},
	{"stanford.edu", "https://www.stanford.edu/favicon.ico", 95},
	{"nature.com", "https://www.nature.com/favicon.ico", 94},
	{"cdc.gov", "https://www.cdc.gov/favicon.ico", 99},
	{"who.int", "https://www.who.int/favicon.ico", 99},
	{"nasa.gov", "https://www.nasa.gov/favicon.ico", 98},
	{"wikipedia.org", "https://en.wikipedia.org/favicon.ico", 91},
	{"nytimes.com", "https://www.nytimes.com/favicon.ico", 88},
	{"bbc.com", "https://www.bbc.com/favicon.ico", 89},
	{"economist.com", "https://www.economist.com/favicon.ico", 92},
	{"reuters.com", "https://www.reuters.com/favicon.ico", 93},
	{"nationalgeographic.com", "https://www.nationalgeographic.com/favicon.ico", 91},
	{"apple.com", "https://www.apple.com/favicon.ico", 87},
	{"microsoft.com", "https://www.microsoft.com/favicon.ico", 88},
	{"google.com", "https://www.google.com/favicon.ico", 90},
}

var whitespace = regexp.MustCompile(`\s+`)

// slug lower-cases q and replaces every whitespace run with sep
func slug(q, sep string) string {
	return whitespace.ReplaceAllString(strings.ToLower(q), sep)
}

// template renders one canonical candidate for a query
type template struct {
	title       string
	url         string
	description string
	domain      string // empty means derive from url
	favicon     string
	date        string
	contentType models.ContentType
	relevance   int
}

func templates(q string) []template {
	dash := slug(q, "-")
	return []template{
		{
			title:       fmt.Sprintf("%s - Official Resource Guide", q),
			url:         fmt.Sprintf("https://www.%s.org/resources", dash),
			description: fmt.Sprintf("Comprehensive resource guide about %s. Includes expert analysis, research papers, and community contributions on all aspects of %s.", q, q),
			domain:      dash + ".org",
			favicon:     "https://www.example.org/favicon.ico",
			date:        "2023-10-15",
			contentType: models.ContentTypeDocument,
			relevance:   98,
		},
		{
			title:       fmt.Sprintf("%s - Wikipedia, The Free Encyclopedia", q),
			url:         fmt.Sprintf("https://en.wikipedia.org/wiki/%s", slug(q, "_")),
			description: fmt.Sprintf("%s is a term referring to various concepts across different fields. Learn more about the history, development, and contemporary applications of %s.", q, q),
			domain:      "wikipedia.org",
			favicon:     "https://en.wikipedia.org/favicon.ico",
			date:        "2023-11-02",
			contentType: models.ContentTypeArticle,
			relevance:   95,
		},
		{
			title:       fmt.Sprintf("Understanding %s: A Comprehensive Guide - MIT Press", q),
			url:         fmt.Sprintf("https://mitpress.mit.edu/topics/%s", dash),
			description: fmt.Sprintf("MIT Press presents a detailed exploration of %s, addressing its fundamental principles, historical development, and future implications across various disciplines.", q),
			favicon:     "https://mitpress.mit.edu/favicon.ico",
			date:        "2023-09-18",
			contentType: models.ContentTypeArticle,
			relevance:   97,
		},
		{
			title:       fmt.Sprintf("%s Research Repository - Harvard University", q),
			url:         fmt.Sprintf("https://research.harvard.edu/topics/%s", dash),
			description: fmt.Sprintf("Harvard University's authoritative collection of research papers, studies, and academic resources related to %s. Features peer-reviewed contributions from leading experts.", q),
			favicon:     "https://harvard.edu/favicon.ico",
			date:        "2023-10-22",
			contentType: models.ContentTypeDocument,
			relevance:   96,
		},
		{
			title:       fmt.Sprintf("The Latest Developments in %s - Nature Journal", q),
			url:         fmt.Sprintf("https://www.nature.com/subjects/%s", dash),
			description: fmt.Sprintf("Nature Journal presents cutting-edge research, scientific breakthroughs, and expert analysis on %s. Stay informed with the most recent developments in this rapidly evolving field.", q),
			favicon:     "https://www.nature.com/favicon.ico",
			date:        "2023-10-30",
			contentType: models.ContentTypeArticle,
			relevance:   94,
		},
		{
			title:       fmt.Sprintf("%s Documentation and Tutorials - MDN Web Docs", q),
			url:         fmt.Sprintf("https://developer.mozilla.org/en-US/docs/%s", slug(q, "/")),
			description: fmt.Sprintf("Comprehensive documentation, tutorials, and examples related to %s. MDN Web Docs provides reliable, developer-approved resources for understanding and implementing %s concepts.", q, q),
			favicon:     "https://developer.mozilla.org/favicon.ico",
			date:        "2023-11-05",
			contentType: models.ContentTypeDocument,
			relevance:   98,
		},
		{
			title:       fmt.Sprintf("%s Community Forum - Stack Exchange", q),
			url:         fmt.Sprintf("https://stackexchange.com/questions/tagged/%s", dash),
			description: fmt.Sprintf("Join discussions, ask questions, and share knowledge about %s with a community of experts and enthusiasts. Find solutions to common problems and insights on best practices.", q),
			favicon:     "https://stackexchange.com/favicon.ico",
			date:        "2023-11-01",
			contentType: models.ContentTypeService,
			relevance:   92,
		},
		{
			title:       fmt.Sprintf("%s Video Courses and Tutorials - EDX", q),
			url:         fmt.Sprintf("https://www.edx.org/learn/%s", dash),
			description: fmt.Sprintf("Learn %s through structured video courses, interactive tutorials, and practical examples. EDX offers courses from top universities and institutions worldwide.", q),
			favicon:     "https://www.edx.org/favicon.ico",
			date:        "2023-10-12",
			contentType: models.ContentTypeVideo,
			relevance:   91,
		},
		{
			title:       fmt.Sprintf("%s Products and Solutions - Industry Leaders", q),
			url:         fmt.Sprintf("https://www.industry-solutions.com/products/%s", dash),
			description: fmt.Sprintf("Discover industry-leading products, services, and solutions related to %s. Compare features, specifications, and pricing to find the perfect match for your needs.", q),
			favicon:     "https://www.industry-solutions.com/favicon.ico",
			date:        "2023-10-25",
			contentType: models.ContentTypeProduct,
			relevance:   88,
		},
		{
			title:       fmt.Sprintf("%s Open Source Projects - GitHub", q),
			url:         fmt.Sprintf("https://github.com/topics/%s", dash),
			description: fmt.Sprintf("Explore open-source projects, libraries, and tools related to %s. GitHub hosts thousands of community-contributed resources that you can use, modify, and learn from.", q),
			favicon:     "https://github.com/favicon.ico",
			date:        "2023-11-07",
			contentType: models.ContentTypeService,
			relevance:   95,
		},
		{
			title:       fmt.Sprintf("%s News and Updates - Reuters", q),
			url:         fmt.Sprintf("https://www.reuters.com/topics/%s", dash),
			description: fmt.Sprintf("Stay updated with the latest news, developments, and trends related to %s. Reuters provides accurate, timely, and unbiased coverage of events worldwide.", q),
			favicon:     "https://www.reuters.com/favicon.ico",
			date:        "2023-11-08",
			contentType: models.ContentTypeArticle,
			relevance:   89,
		},
		{
			title:       fmt.Sprintf("%s Standards and Guidelines - W3C", q),
			url:         fmt.Sprintf("https://www.w3.org/standards/%s", dash),
			description: fmt.Sprintf("Official standards, guidelines, and best practices for %s. The World Wide Web Consortium (W3C) develops and maintains internationally recognized standards to ensure compatibility and quality.", q),
			favicon:     "https://www.w3.org/favicon.ico",
			date:        "2023-09-29",
			contentType: models.ContentTypeDocument,
			relevance:   97,
		},
	}
}

// CandidateCount is the number of canonical templates
const CandidateCount = 12
