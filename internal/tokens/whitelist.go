package tokens

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed whitelist.yaml
var whitelistYAML []byte

type whitelistFile struct {
	Tokens []struct {
		Type string `yaml:"type"`
	} `yaml:"tokens"`
}

// ParseWhitelist decodes a whitelist document and checks each entry looks like a coin type.
func ParseWhitelist(raw []byte) ([]string, error) {
	var wf whitelistFile
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("parse whitelist: %w", err)
	}
	if len(wf.Tokens) == 0 {
		return nil, errors.New("whitelist is empty")
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(wf.Tokens))
	for i, t := range wf.Tokens {
		ct := strings.TrimSpace(t.Type)
		if strings.Count(ct, "::") != 2 || !strings.HasPrefix(ct, "0x") {
			return nil, fmt.Errorf("whitelist entry %d: bad coin type %q", i+1, t.Type)
		}
		if seen[ct] {
			continue
		}
		seen[ct] = true
		out = append(out, ct)
	}
	return out, nil
}

// Whitelist returns the compiled-in coin types.
func Whitelist() []string {
	wl, err := ParseWhitelist(whitelistYAML)
	if err != nil {
		panic(err)
	}
	return wl
}
