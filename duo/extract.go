package duo

import "regexp"

// fence 必须位于行首（最多缩进三个空格）；开头 fence 可带语言标记（```go），
// 结尾 fence 前的换行不计入代码。
var fenceRe = regexp.MustCompile("(?ms)^[ \t]{0,3}```[^\n`]*\n(.*?)\n?^[ \t]{0,3}```")

// ExtractCode returns the text between the first fenced code block in reply.
// When reply has no fence pair the whole reply is returned and fenced is false.
func ExtractCode(reply string) (code string, fenced bool) {
	m := fenceRe.FindStringSubmatch(reply)
	if len(m) < 2 {
		return reply, false
	}
	return m[1], true
}
