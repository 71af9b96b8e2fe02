package duo

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	Role    Role
	System  string
	User    string
	History []Message
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

const writerSystem = `You are a code-writing specialist focused on clean, functional code.
Your role is to:
- Write initial implementations for coding tasks
- Improve existing code based on reviewer feedback
- Focus on functionality and clarity
- Put the code in a single fenced code block (three backticks)
- Provide a brief explanation of your approach`

const reviewerSystem = `You are a code-review specialist focused on correctness and best practices.
Your role is to:
- Review code for correctness, efficiency, and best practices
- Identify potential bugs or edge cases
- Suggest specific improvements
Be constructive and specific. If the code needs no further changes, say clearly that it looks good.`

// BuildWriterPrompt 生成 writer 提示词；首轮只有任务，之后带上上一版代码和评审意见。
// earlier holds the turns of the rounds before the one being revised; they are
// replayed as conversation history.
func BuildWriterPrompt(task, prevCode, feedback string, earlier []Turn) Prompt {
	var sb strings.Builder
	if prevCode == "" && feedback == "" {
		sb.WriteString(fmt.Sprintf("Please write code for this task: %s\n\n", task))
		sb.WriteString("Requirements:\n")
		sb.WriteString("- Write clean, functional code\n")
		sb.WriteString("- Include proper error handling where appropriate\n")
		sb.WriteString("- Add brief comments explaining your approach\n")
		sb.WriteString("- Make sure the code is ready to run\n")
	} else {
		sb.WriteString("Please improve this code based on the reviewer's feedback.\n\n")
		sb.WriteString(fmt.Sprintf("Original task: %s\n\n", task))
		sb.WriteString(fmt.Sprintf("Previous code:\n%s\n\n", prevCode))
		sb.WriteString(fmt.Sprintf("Reviewer feedback:\n%s\n\n", feedback))
		sb.WriteString("Please provide an improved version that addresses the reviewer's concerns.\n")
	}
	return Prompt{
		Role:    RoleWriter,
		System:  writerSystem,
		User:    sb.String(),
		History: historyFrom(earlier),
	}
}

// historyFrom 把之前的 writer 回复记为 assistant，reviewer 意见记为 user。
func historyFrom(turns []Turn) []Message {
	var msgs []Message
	for _, t := range turns {
		switch t.Role {
		case RoleWriter:
			msgs = append(msgs, Message{Role: "assistant", Content: t.Reply})
		case RoleReviewer:
			msgs = append(msgs, Message{Role: "user", Content: t.Reply})
		}
	}
	return msgs
}

// BuildReviewerPrompt 生成 reviewer 提示词。
func BuildReviewerPrompt(task, code string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please review this code for the task: '%s'\n\n", task))
	sb.WriteString(fmt.Sprintf("Code to review:\n```\n%s\n```\n\n", code))
	sb.WriteString("Please provide:\n")
	sb.WriteString("1. What the code does well\n")
	sb.WriteString("2. Any issues or improvements needed\n")
	sb.WriteString("3. Specific suggestions for enhancement\n")
	sb.WriteString("4. If improvements are needed, provide updated code\n")
	return Prompt{
		Role:   RoleReviewer,
		System: reviewerSystem,
		User:   sb.String(),
	}
}
