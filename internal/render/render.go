// Package render serializes exported resources into their downloadable
// formats.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Format describes one supported export format.
type Format struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Extension   string `json:"extension"`
}

var formats = []Format{
	{Name: "json", ContentType: "application/json", Extension: ".json"},
	{Name: "csv", ContentType: "text/csv", Extension: ".csv"},
	{Name: "markdown", ContentType: "text/markdown", Extension: ".md"},
	{Name: "html", ContentType: "text/html; charset=utf-8", Extension: ".html"},
}

// Formats lists every supported export format.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// Supported reports whether a format name is known.
func Supported(name string) bool {
	for _, f := range formats {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type for a format name.
func ContentType(name string) string {
	for _, f := range formats {
		if f.Name == name {
			return f.ContentType
		}
	}
	return "application/octet-stream"
}

// Resource renders a resource into the requested format. The resource is
// flattened through its JSON form so every exportable type renders the same
// way its API responses serialize.
func Resource(format, title string, resource any) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(resource, "", "  ")
	case "csv":
		return renderCSV(resource)
	case "markdown":
		return renderMarkdown(title, resource)
	case "html":
		return renderHTML(title, resource)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// fields returns the resource's top-level JSON fields in sorted key order.
func fields(resource any) ([]string, map[string]string, error) {
	raw, err := json.Marshal(resource)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal resource: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("resource is not an object: %w", err)
	}

	keys := make([]string, 0, len(m))
	values := map[string]string{}
	for k, v := range m {
		keys = append(keys, k)
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v) // non-string values keep their JSON form
		}
		values[k] = s
	}
	sort.Strings(keys)
	return keys, values, nil
}

func renderCSV(resource any) ([]byte, error) {
	keys, values, err := fields(resource)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(keys)
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = values[k]
	}
	_ = w.Write(row)
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderMarkdown(title string, resource any) ([]byte, error) {
	keys, values, err := fields(resource)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(values[k], "|", "\\|"))
	}
	return []byte(b.String()), nil
}

var htmlTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<table>
{{- range .Rows}}
<tr><th>{{.Key}}</th><td>{{.Value}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

func renderHTML(title string, resource any) ([]byte, error) {
	keys, values, err := fields(resource)
	if err != nil {
		return nil, err
	}

	type row struct{ Key, Value string }
	data := struct {
		Title string
		Rows  []row
	}{Title: title}
	for _, k := range keys {
		data.Rows = append(data.Rows, row{Key: k, Value: values[k]})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
