package model

// Language describes a programming language offered in the converter UI.
type Language struct {
	Value     string
	Label     string
	Supported bool
}

var languages = []Language{
	{Value: "javascript", Label: "JavaScript", Supported: true},
	{Value: "python", Label: "Python", Supported: true},
	{Value: "java", Label: "Java", Supported: true},
	{Value: "cpp", Label: "C++", Supported: true},
	{Value: "csharp", Label: "C#", Supported: true},
	{Value: "php", Label: "PHP", Supported: true},
	{Value: "ruby", Label: "Ruby", Supported: true},
	{Value: "go", Label: "Go", Supported: true},
	{Value: "rust", Label: "Rust", Supported: true},
	{Value: "swift", Label: "Swift", Supported: true},
	{Value: "kotlin", Label: "Kotlin", Supported: true},
	{Value: "typescript", Label: "TypeScript", Supported: true},
	{Value: "scala", Label: "Scala", Supported: true},
	{Value: "r", Label: "R", Supported: true},
	{Value: "matlab", Label: "MATLAB", Supported: true},
	{Value: "sql", Label: "SQL", Supported: true},
	{Value: "html", Label: "HTML", Supported: true},
	{Value: "css", Label: "CSS", Supported: true},
	{Value: "bash", Label: "Bash", Supported: true},
	{Value: "powershell", Label: "PowerShell", Supported: true},
}

// Languages returns a copy of the languages listed by the converter.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageLabel returns the display label for a language id, or the id itself
// when the language is not in the list. Unlisted languages are still accepted.
func LanguageLabel(id string) string {
	for _, l := range languages {
		if l.Value == id {
			return l.Label
		}
	}
	return id
}
