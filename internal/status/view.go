package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the status data to a string
func Render(data *Data) string {
	sections := []string{
		renderHeader(data),
		renderSources(data),
	}
	if data.Config != nil {
		sections = append(sections,
			renderSession(data),
			renderEndpoints(data),
		)
	}
	sections = append(sections, renderProblems(data))
	if data.Probe != nil {
		sections = append(sections, renderProbe(data.Probe))
	}
	return strings.Join(sections, "\n\n")
}

func renderHeader(data *Data) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📂 Current directory: ") + valueStyle.Render(data.CurrentDir) + "\n")
	b.WriteString(titleStyle.Render("📦 Version: ") + valueStyle.Render(data.Version))
	if data.GitCommit != "" && data.GitCommit != "unknown" {
		b.WriteString(subtleStyle.Render(fmt.Sprintf(" (%s, %s)", data.GitCommit, data.BuildTime)))
	}
	return b.String()
}

func renderSources(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📝 Configuration search order:") + "\n")

	for i, c := range data.Candidates {
		mark := subtleStyle.Render("-")
		note := ""
		switch {
		case c.Used:
			mark = successStyle.Render("✓")
			note = subtleStyle.Render(" (loaded)")
		case c.Exists:
			mark = subtleStyle.Render("·")
			note = subtleStyle.Render(" (shadowed)")
		}
		b.WriteString(fmt.Sprintf("   %d. %s %s%s\n", i+1, valueStyle.Render(c.Path), mark, note))
	}
	if data.Source == "" {
		b.WriteString("   " + subtleStyle.Render("No configuration file found, using built-in defaults"))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderSession(data *Data) string {
	s := data.Config.Session
	var b strings.Builder
	b.WriteString(sectionStyle.Render("⌨️  Session:") + "\n")
	b.WriteString(kv("Debounce", fmt.Sprintf("%dms", s.DebounceMS)))
	b.WriteString(kv("Timeout", fmt.Sprintf("%dms", s.TimeoutMS)))
	b.WriteString(kv("Min query length", fmt.Sprintf("%d", s.MinQueryLength)))
	b.WriteString(kv("Max results", fmt.Sprintf("%d", s.MaxResults)))
	b.WriteString(kv("Label", data.Config.Label.Template))
	b.WriteString(kv("Log level", data.Config.LogLevel))
	return strings.TrimSuffix(b.String(), "\n")
}

func renderEndpoints(data *Data) string {
	c := data.Config
	cache := "disabled"
	if c.Proxy.CacheSize > 0 {
		cache = fmt.Sprintf("%d entries, %ds TTL", c.Proxy.CacheSize, c.Proxy.CacheTTLSeconds)
	}
	rows := c.Fixture.File
	if rows == "" {
		rows = "built-in sample"
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render("🌐 Endpoints:") + "\n")
	b.WriteString(kv("Transport", c.Transport.Endpoint))
	b.WriteString(kv("Proxy", fmt.Sprintf("%s → %s (timeout %dms)", c.Proxy.Listen, c.Proxy.Upstream, c.Proxy.TimeoutMS)))
	b.WriteString(kv("Proxy cache", cache))
	b.WriteString(kv("Fixture", fmt.Sprintf("%s (%s, max %d)", c.Fixture.Listen, rows, c.Fixture.MaxResults)))
	return strings.TrimSuffix(b.String(), "\n")
}

func renderProblems(data *Data) string {
	if len(data.Problems) == 0 {
		return sectionStyle.Render("🩺 Checks: ") + successStyle.Render("✓ Configuration is valid")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🩺 Checks:") + "\n")
	for _, p := range data.Problems {
		b.WriteString("   " + errorStyle.Render("✗ ") + keyStyle.Render("["+p.Field+"] ") + valueStyle.Render(p.Message) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderProbe(p *ProbeResult) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📡 Relay health:") + "\n")
	b.WriteString(kv("URL", p.URL))
	switch {
	case p.Healthy:
		b.WriteString("   " + successStyle.Render("✓ Reachable"))
	case p.Error != "":
		b.WriteString("   " + errorStyle.Render("✗ Unreachable: "+p.Error))
	default:
		b.WriteString("   " + errorStyle.Render(fmt.Sprintf("✗ Unhealthy (HTTP %d)", p.Status)))
	}
	return b.String()
}

func kv(key, value string) string {
	return "   " + keyStyle.Render(key+": ") + valueStyle.Render(value) + "\n"
}
