package enrich

import (
	"hash/fnv"
	"strings"
)

// The built-in providers are deterministic: the same input always yields the
// same profile, so cached and uncached responses are indistinguishable.

type domainProvider struct{}

func (domainProvider) Type() string { return "domain" }
func (domainProvider) Name() string { return "domain-profile" }
func (domainProvider) Description() string {
	return "Resolves a domain name to an organization profile."
}

func (domainProvider) Enrich(value string) map[string]any {
	host := strings.ToLower(strings.TrimSpace(value))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "www.")
	host, _, _ = strings.Cut(host, "/")

	name := host
	tld := ""
	if i := strings.LastIndex(host, "."); i > 0 {
		name = host[:i]
		tld = host[i+1:]
	}

	return map[string]any{
		"domain":       host,
		"organization": titleCase(name),
		"tld":          tld,
		"website":      "https://" + host,
	}
}

type emailProvider struct{}

func (emailProvider) Type() string { return "email" }
func (emailProvider) Name() string { return "email-profile" }
func (emailProvider) Description() string {
	return "Splits an email address and derives the sender's organization."
}

func (emailProvider) Enrich(value string) map[string]any {
	addr := strings.ToLower(strings.TrimSpace(value))
	local, host, found := strings.Cut(addr, "@")

	data := map[string]any{
		"email": addr,
		"valid": found && local != "" && strings.Contains(host, "."),
	}
	if !found {
		return data
	}

	data["local_part"] = local
	data["domain"] = host
	if name, _, ok := strings.Cut(local, "."); ok {
		data["first_name"] = titleCase(name)
	}
	return data
}

type companyProvider struct{}

func (companyProvider) Type() string { return "company" }
func (companyProvider) Name() string { return "company-profile" }
func (companyProvider) Description() string {
	return "Builds a firmographic profile for a company name."
}

var (
	industries = []string{"software", "finance", "healthcare", "retail", "manufacturing", "media"}
	sizeBands  = []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}
)

func (companyProvider) Enrich(value string) map[string]any {
	name := strings.TrimSpace(value)
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	sum := h.Sum32()

	return map[string]any{
		"name":     titleCase(name),
		"industry": industries[sum%uint32(len(industries))],
		"size":     sizeBands[(sum/7)%uint32(len(sizeBands))],
		"founded":  1980 + int(sum%45),
		"slug":     strings.ReplaceAll(strings.ToLower(name), " ", "-"),
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
