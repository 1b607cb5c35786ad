package platform

import "strings"

// maxBodyLength is the remote's limit on issue and comment bodies.
const maxBodyLength = 1000000

// MassageMarkdown prepares a markdown body for the remote platform:
// repository-relative pull request links are rewritten to the remote's path
// layout and the body is truncated to the remote's length limit.
func MassageMarkdown(body string) string {
	massaged := strings.ReplaceAll(body, "](../pull/", "](pulls/")
	return smartTruncate(massaged, maxBodyLength)
}

// smartTruncate shortens a body to limit without splitting a multi-byte
// rune, appending a marker so readers know content was dropped.
func smartTruncate(body string, limit int) string {
	if len(body) <= limit {
		return body
	}
	const marker = "\n\n[Truncated]"
	cut := limit - len(marker)
	for cut > 0 && !isRuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + marker
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
