package notify

import (
	"sort"
	"strings"

	"dispatch/internal/core/ports"
)

// renderPlainText appends the message data as sorted "key: value" lines.
func renderPlainText(msg ports.Message) string {
	var b strings.Builder
	b.WriteString(msg.Body)

	if len(msg.Data) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n\n")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(msg.Data[k])
		b.WriteString("\n")
	}
	return b.String()
}
