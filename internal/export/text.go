package export

import (
	"fmt"
	"strings"

	"github.com/comigor/becas-go/internal/history"
)

// Text renders msgs as a plain-text transcript with numbered turns.
func Text(msgs []history.Message) string {
	var b strings.Builder
	b.WriteString(Title + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for i, m := range msgs {
		fmt.Fprintf(&b, "%d. %s:\n%s\n", i+1, RoleLabel(m.Role), m.Content)
		b.WriteString(strings.Repeat("-", 30) + "\n\n")
	}
	return b.String()
}
