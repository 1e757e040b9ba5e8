// Package envfile reads KEY=value files used to extend the child environment.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Env is an ordered set of variables. Later assignments win.
type Env struct {
	keys []string
	vars map[string]string
}

// New creates an empty Env
func New() *Env {
	return &Env{vars: map[string]string{}}
}

// Parse will load one or many env files into an Env object
func Parse(paths ...string) (*Env, error) {
	env := New()
	for _, path := range paths {
		if err := env.Load(path); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Load reads one env file into env. An empty path is ignored.
func (env *Env) Load(filename string) error {
	if filename == "" {
		return nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open env file %q: %w", filename, err)
	}
	defer f.Close()
	if err := env.Read(f); err != nil {
		return fmt.Errorf("failed to read env file %q: %w", filename, err)
	}
	return nil
}

// Read parses env file syntax from r
func (env *Env) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if strings.HasPrefix(value, "<<") {
			env.Set(key, parseHeredoc(value, scanner))
		} else {
			env.Set(key, unquote(value))
		}
	}
	return scanner.Err()
}

// Set assigns key, keeping its original position if it was already set
func (env *Env) Set(key, value string) {
	if _, ok := env.vars[key]; !ok {
		env.keys = append(env.keys, key)
	}
	env.vars[key] = value
}

// ToArray will export as an env array for use in exec.Cmd env.
func (env *Env) ToArray() []string {
	vars := make([]string, 0, len(env.keys))
	for _, key := range env.keys {
		vars = append(vars, key+"="+env.vars[key])
	}
	return vars
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func parseHeredoc(value string, scanner *bufio.Scanner) string {
	heredoc := strings.Split(value[2:], " ")[0]
	firstLine := strings.TrimPrefix(value, "<<"+heredoc)
	parts := []string{}
	if strings.TrimSpace(firstLine) != "" {
		parts = append(parts, strings.TrimSpace(firstLine))
	}
	for scanner.Scan() {
		if part := scanner.Text(); part == heredoc {
			break
		} else {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}
