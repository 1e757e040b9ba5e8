package term

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

const ansiPat = `\033\[(([0-9]+;?)*[a-zA-Z]?)`

var (
	ansiRegexp  = regexp.MustCompile(ansiPat)
	leadingAnsi = regexp.MustCompile("^" + ansiPat)
	trailAnsi   = regexp.MustCompile(ansiPat + "$")
)

var funcMap = template.FuncMap{
	"bright":                  styler("3", "9"),
	"bold":                    styler("1"),
	"faint":                   styler("2"),
	"italic":                  styler("3"),
	"underline":               styler("4"),
	"red":                     styler("31"),
	"green":                   styler("32"),
	"yellow":                  styler("33"),
	"blue":                    styler("34"),
	"magenta":                 styler("35"),
	"cyan":                    styler("36"),
	"trimTrailingWhitespaces": trimRightSpace,
	"rpad":                    rpad,
}

// styled is a piece of text with the SGR attributes wrapping it
type styled struct {
	text  string
	attrs []string
}

func parseStyled(str string) styled {
	attrs := []string{}
	if cmd := leadingAnsi.FindStringSubmatch(str); cmd != nil {
		str = trailAnsi.ReplaceAllString(leadingAnsi.ReplaceAllString(str, ""), "")
		if codes := strings.TrimSuffix(cmd[1], "m"); codes != "" {
			attrs = strings.Split(codes, ";")
		}
	}
	return styled{text: str, attrs: attrs}
}

// swap replaces the prefix of the first attribute that starts with before,
// which turns e.g. 31 (red) into 91 (bright red).
func (s *styled) swap(before, after string) {
	for i, val := range s.attrs {
		if strings.HasPrefix(val, before) && len(val) > len(before) {
			s.attrs[i] = strings.Replace(val, before, after, 1)
			return
		}
	}
}

func (s styled) String() string {
	if len(s.attrs) == 0 {
		return s.text
	}
	return fmt.Sprintf("\033[%vm%v\033[m", strings.Join(s.attrs, ";"), s.text)
}

func styler(attrs ...string) func(interface{}) string {
	return func(v interface{}) string {
		text := parseStyled(fmt.Sprintf("%v", v))
		switch len(attrs) {
		case 1:
			text.attrs = append(text.attrs, attrs[0])
		case 2:
			text.swap(attrs[0], attrs[1])
		}
		return text.String()
	}
}

func stripANSI(src string) string {
	return ansiRegexp.ReplaceAllString(src, "")
}

// wrap breaks lines longer than width, counting only visible runes
func wrap(src string, width int) string {
	var output, line strings.Builder
	for _, r := range src {
		line.WriteRune(r)
		if r == '\n' || utf8.RuneCountInString(stripANSI(line.String())) >= width-1 {
			if r != '\n' {
				line.WriteByte('\n')
			}
			output.WriteString(line.String())
			line.Reset()
		}
	}
	output.WriteString(line.String())
	return output.String()
}

func rpad(s string, padding int) string {
	return fmt.Sprintf(fmt.Sprintf("%%-%ds", padding), s)
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
