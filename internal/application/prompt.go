package application

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

// BuildPrompt renders a conversion request into the instruction sent to the
// completion provider. It is deterministic and returns model.ErrInvalidRequest
// for requests that fail validation.
func BuildPrompt(req model.ConversionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	n := req.Normalize()
	source := model.LanguageLabel(n.SourceLang)
	target := model.LanguageLabel(n.TargetLang)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert code converter. Convert the following %s code to %s.\n\n", source, target)
	b.WriteString("Rules:\n")
	b.WriteString("1. Provide ONLY the converted code, no explanations\n")
	b.WriteString("2. Maintain the same functionality and logic\n")
	fmt.Fprintf(&b, "3. Follow %s best practices and conventions\n", target)
	b.WriteString("4. Do not include markdown formatting or code blocks\n")
	fmt.Fprintf(&b, "5. Preserve comments but translate them to %s comment style\n\n", target)
	fmt.Fprintf(&b, "Source %s code:\n%s\n\n", source, n.SourceCode)
	fmt.Fprintf(&b, "Convert to %s:", target)

	return b.String(), nil
}
