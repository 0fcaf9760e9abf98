package pages

import "fmt"

// Severity ranks a lint Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single finding reported by Check.
type Issue struct {
	Route    string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Route, i.Message)
}

// Check lints a configuration for content that loads fine but cannot be
// reached or rendered as intended.
func Check(c Config) []Issue {
	var issues []Issue
	report := func(route string, sev Severity, format string, args ...interface{}) {
		issues = append(issues, Issue{Route: route, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.Page(HomepageRoute) == nil {
		report(HomepageRoute, SeverityError, "no homepage route configured")
	}

	for _, name := range c.RouteNames() {
		page := c[name]
		if page == nil {
			continue
		}

		switch page.Type {
		case TypeSelector:
			seen := make(map[string]bool)
			for _, d := range page.Deployments {
				if seen[d.ID] {
					report(name, SeverityWarning, "deployment %q listed twice", d.ID)
				}
				seen[d.ID] = true
				if c.Page(d.ID) == nil {
					report(name, SeverityError, "deployment %q has no page", d.ID)
				}
			}

		case TypeDeployment:
			for _, s := range page.Sections {
				defaults := 0
				for _, v := range s.Videos {
					if v.Video == "" {
						report(name, SeverityError, "section %q: video %q has no media path", s.Title, DisplayName(v))
					}
					if v.Default {
						defaults++
					}
					if !v.Default && v.Version == "" {
						report(name, SeverityWarning,
							"section %q: video %q is only visible with version=all", s.Title, DisplayName(v))
					}
				}
				if len(s.Videos) > 0 && defaults == 0 {
					report(name, SeverityWarning, "section %q is hidden without a version filter", s.Title)
				}
			}
		}
	}
	return issues
}
