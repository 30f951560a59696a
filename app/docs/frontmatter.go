package docs

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	log "github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

// meta is the document metadata taken from front matter.
type meta struct {
	Title string `yaml:"title" toml:"title"`
}

// frontMatterFormats lists supported front matter blocks by their delimiter line.
var frontMatterFormats = []struct {
	delim  string
	name   string
	decode func([]byte, *meta) error
}{
	{delim: "---", name: "yaml", decode: decodeYAML},
	{delim: "+++", name: "toml", decode: decodeTOML},
}

// frontMatter splits an optional leading metadata block from the body. The block is yaml between
// "---" lines or toml between "+++" lines. Broken front matter is rendered as part of the body.
func frontMatter(data []byte) (meta, []byte) {
	norm := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	for _, f := range frontMatterFormats {
		if !bytes.HasPrefix(norm, []byte(f.delim+"\n")) {
			continue
		}
		rest := norm[len(f.delim)+1:]
		end := bytes.Index(rest, []byte("\n"+f.delim))
		if end < 0 {
			return meta{}, data
		}
		var m meta
		if err := f.decode(rest[:end], &m); err != nil {
			log.Printf("[DEBUG] ignore invalid %s front matter: %v", f.name, err)
			return meta{}, data
		}
		body := rest[end+len(f.delim)+1:]
		return m, bytes.TrimPrefix(body, []byte("\n"))
	}
	return meta{}, data
}

func decodeYAML(data []byte, m *meta) error {
	if err := yaml.Unmarshal(data, m); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

func decodeTOML(data []byte, m *meta) error {
	if err := toml.Unmarshal(data, m); err != nil {
		return fmt.Errorf("invalid toml: %w", err)
	}
	return nil
}
