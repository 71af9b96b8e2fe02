package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"devduo/duo"
)

// SaveJSON writes result as indented JSON.
func SaveJSON(path string, result duo.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// LoadJSON reads a result previously written by SaveJSON.
func LoadJSON(path string) (duo.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return duo.Result{}, err
	}
	var res duo.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return duo.Result{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}

// Markdown renders the result as a readable transcript document.
func Markdown(result duo.Result) string {
	var sb strings.Builder
	sb.WriteString("# DevDuo collaboration\n\n")
	sb.WriteString(fmt.Sprintf("- **Task:** %s\n", result.Task))
	if result.Model != "" {
		sb.WriteString(fmt.Sprintf("- **Model:** %s\n", result.Model))
	}
	sb.WriteString(fmt.Sprintf("- **Iterations:** %d\n", result.Iterations))
	sb.WriteString(fmt.Sprintf("- **Reviewer satisfied:** %t\n\n", result.Satisfied))

	sb.WriteString("## Final code\n\n")
	sb.WriteString(fence(result.FinalCode))

	sb.WriteString("## Transcript\n\n")
	for _, t := range result.Transcript {
		sb.WriteString(fmt.Sprintf("### Round %d: %s\n\n", t.Round, t.Role))
		sb.WriteString(strings.TrimSpace(t.Reply))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// fence 选一个比代码中最长反引号串更长的分隔符，避免代码里的 ``` 提前闭合。
func fence(code string) string {
	n := 3
	run := 0
	for _, r := range code {
		if r == '`' {
			run++
			if run >= n {
				n = run + 1
			}
			continue
		}
		run = 0
	}
	marker := strings.Repeat("`", n)
	return marker + "\n" + code + "\n" + marker + "\n\n"
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts the Markdown report into a standalone HTML page.
func HTML(result duo.Result) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(result)), &body); err != nil {
		return "", err
	}
	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>DevDuo collaboration</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// SaveHTML writes the HTML report to path.
func SaveHTML(path string, result duo.Result) error {
	html, err := HTML(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(html), 0o644)
}
