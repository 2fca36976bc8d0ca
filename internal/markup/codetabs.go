package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// A run of consecutive fenced code blocks whose info strings carry a
// tab="Label" attribute renders as one tabbed widget instead of separate
// blocks. Labels come from the declared attribute; the attribute itself is
// stripped before the markup renderer sees the fence.

var tabFencePattern = regexp.MustCompile("^```([^`\\s]*)\\s+tab=\"([^\"]+)\"\\s*$")

type codeTab struct {
	label string
	fence string // fence with the tab attribute removed, renderable standalone
}

type codeTabGroup struct {
	id   int
	tabs []codeTab
}

// extractCodeTabGroups scans the body for tab-labeled fence runs and
// replaces each run with a placeholder token line. The placeholder survives
// markdown rendering as a plain paragraph and is substituted afterwards,
// which keeps the widget markup out of the markdown pass entirely.
func extractCodeTabGroups(body []byte) ([]byte, []*codeTabGroup) {
	lines := strings.Split(string(body), "\n")
	var out []string
	var groups []*codeTabGroup

	i := 0
	for i < len(lines) {
		group, next := scanTabRun(lines, i)
		if group == nil {
			out = append(out, lines[i])
			i++
			continue
		}
		group.id = len(groups)
		groups = append(groups, group)
		out = append(out, group.token())
		i = next
	}

	if len(groups) == 0 {
		return body, nil
	}
	return []byte(strings.Join(out, "\n")), groups
}

// scanTabRun reads a run of two or more tab-labeled fences starting at
// index start, with only blank lines between them. Returns nil when the
// position does not start such a run.
func scanTabRun(lines []string, start int) (*codeTabGroup, int) {
	group := &codeTabGroup{}
	i := start
	for i < len(lines) {
		m := tabFencePattern.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		lang, label := m[1], m[2]
		fence := []string{"```" + lang}
		j := i + 1
		closed := false
		for j < len(lines) {
			fence = append(fence, lines[j])
			if strings.TrimSpace(lines[j]) == "```" {
				closed = true
				j++
				break
			}
			j++
		}
		if !closed {
			break
		}
		group.tabs = append(group.tabs, codeTab{label: label, fence: strings.Join(fence, "\n")})
		i = j
		// Only blank lines may separate members of one group.
		k := i
		for k < len(lines) && strings.TrimSpace(lines[k]) == "" {
			k++
		}
		if k >= len(lines) || !tabFencePattern.MatchString(lines[k]) {
			break
		}
		i = k
	}
	if len(group.tabs) < 2 {
		return nil, start
	}
	return group, i
}

func (g *codeTabGroup) token() string {
	return fmt.Sprintf("@@codetabs:%d@@", g.id)
}

// renderHTML renders each member fence through md and assembles the
// tab-group structure.
func (g *codeTabGroup) renderHTML(md goldmark.Markdown) (string, error) {
	var b strings.Builder
	b.WriteString(`<div class="code-tabs">` + "\n")
	b.WriteString(`<ul class="code-tabs-nav">` + "\n")
	for i, tab := range g.tabs {
		active := ""
		if i == 0 {
			active = ` class="active"`
		}
		fmt.Fprintf(&b, "<li%s>%s</li>\n", active, tab.label)
	}
	b.WriteString("</ul>\n")
	for i, tab := range g.tabs {
		var buf bytes.Buffer
		if err := md.Convert([]byte(tab.fence), &buf); err != nil {
			return "", err
		}
		active := ""
		if i == 0 {
			active = " active"
		}
		fmt.Fprintf(&b, `<div class="code-tab%s" data-tab="%s">`+"\n", active, tab.label)
		b.Write(buf.Bytes())
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>")
	return b.String(), nil
}

// substitute replaces this group's placeholder in the rendered page HTML.
func (g *codeTabGroup) substitute(html, rendered string) string {
	wrapped := "<p>" + g.token() + "</p>"
	if strings.Contains(html, wrapped) {
		return strings.Replace(html, wrapped, rendered, 1)
	}
	return strings.Replace(html, g.token(), rendered, 1)
}
