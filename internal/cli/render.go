package cli

import (
	"io"

	"gopkg.in/yaml.v3"
)

// report is implemented by every query report of the app package.
type report interface {
	Text() string
}

// render writes r to w as YAML, or as plain text when format is "text".
func render(w io.Writer, format string, r report) error {
	if format == "text" {
		_, err := io.WriteString(w, r.Text())
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
