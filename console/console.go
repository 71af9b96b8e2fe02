// Package console handles the interactive terminal side of devduo.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"devduo/duo"
)

// ExampleTasks are offered when the user does not type a task.
var ExampleTasks = []string{
	"Write a function to calculate fibonacci numbers efficiently",
	"Write a function to reverse a string with proper error handling",
	"Write a function to check if a number is prime",
	"Write a function to find the longest palindrome in a string",
	"Write a function to implement binary search",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	roleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	rule         = strings.Repeat("=", 50)
)

// Options controls how replies are rendered.
type Options struct {
	// Plain prints model output verbatim instead of rendering Markdown.
	Plain bool
	// Style is a glamour standard style name; empty picks one from the terminal.
	Style    string
	WordWrap int
}

type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *glamour.TermRenderer
}

func New(in io.Reader, out io.Writer, opts Options) (*Console, error) {
	c := &Console{in: bufio.NewReader(in), out: out}
	if opts.Plain {
		return c, nil
	}
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 100
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	c.renderer = r
	return c, nil
}

func (c *Console) Banner(title string) {
	fmt.Fprintln(c.out, titleStyle.Render(title))
	fmt.Fprintln(c.out, rule)
}

func (c *Console) Section(title string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, sectionStyle.Render(title))
}

func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintln(c.out, okStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintln(c.out, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// Markdown prints text, rendered when a renderer is configured.
func (c *Console) Markdown(text string) {
	if c.renderer != nil {
		if out, err := c.renderer.Render(text); err == nil {
			fmt.Fprint(c.out, out)
			return
		}
	}
	fmt.Fprintln(c.out, text)
}

// readLine 读取一行；EOF 视为空输入。
func (c *Console) readLine() (string, error) {
	fmt.Fprint(c.out, "> ")
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints question and returns the trimmed answer.
func (c *Console) Ask(question string) (string, error) {
	fmt.Fprintln(c.out, question)
	return c.readLine()
}

// Confirm asks a y/n question; anything but y/yes is a no.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.Ask(question + " (y/n)")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// choose 列出选项并读取编号；非法或空输入返回 -1 和原始输入。
func (c *Console) choose(items []string, question string) (int, string, error) {
	for i, item := range items {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, item)
	}
	answer, err := c.Ask(question)
	if err != nil {
		return -1, "", err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(items) {
		return n - 1, answer, nil
	}
	return -1, answer, nil
}

// SelectModel lets the user pick one of models. An empty list falls back to
// duo.FallbackModel and an invalid answer picks the first model.
func (c *Console) SelectModel(models []string) (string, error) {
	if len(models) == 0 {
		c.Warnf("No models detected. Using default: %s", duo.FallbackModel)
		return duo.FallbackModel, nil
	}
	c.Section(fmt.Sprintf("Found %d available models:", len(models)))
	idx, _, err := c.choose(models, "Choose a model number or press Enter for default:")
	if err != nil {
		return "", err
	}
	if idx < 0 {
		c.Successf("Using default: %s", models[0])
		return models[0], nil
	}
	c.Successf("Selected: %s", models[idx])
	return models[idx], nil
}

// SelectTask offers ExampleTasks; free text is taken as the task itself and
// an empty answer picks the first example.
func (c *Console) SelectTask() (string, error) {
	c.Section("Example tasks:")
	idx, answer, err := c.choose(ExampleTasks, fmt.Sprintf("Choose an example task (1-%d) or enter your own:", len(ExampleTasks)))
	if err != nil {
		return "", err
	}
	switch {
	case idx >= 0:
		return ExampleTasks[idx], nil
	case answer != "":
		return answer, nil
	default:
		return ExampleTasks[0], nil
	}
}

// PrintTurn shows one transcript entry.
func (c *Console) PrintTurn(t duo.Turn) {
	label := "Writer"
	if t.Role == duo.RoleReviewer {
		label = "Reviewer"
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, roleStyle.Render(fmt.Sprintf("[round %d] %s:", t.Round, label)))
	c.Markdown(t.Reply)
}

// PrintResult shows the final summary of a run.
func (c *Console) PrintResult(r duo.Result) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, titleStyle.Render("FINAL RESULTS"))
	fmt.Fprintln(c.out, rule)
	c.Infof("Task: %s", r.Task)
	c.Infof("Iterations: %d", r.Iterations)
	if r.Satisfied {
		c.Successf("Reviewer is satisfied.")
	} else {
		c.Warnf("Stopped after %d rounds without reviewer approval.", r.Iterations)
	}
	c.Section("Final Code:")
	fmt.Fprintln(c.out, r.FinalCode)
}

// PrintFailure reports a failed run with guidance for its error kind.
func (c *Console) PrintFailure(err error, model string) {
	kind := duo.KindOf(err)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, errStyle.Render("CRITICAL ERROR"))
	fmt.Fprintln(c.out, rule)
	c.Infof("%v", err)
	c.Warnf("%s", duo.Advice(kind, model))
}
