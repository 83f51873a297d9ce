package judge

// SubmissionRequest describes one execution request sent to the judge.
// SourceCode and LanguageID are required; the remaining fields are optional
// and omitted from the JSON payload when zero.
type SubmissionRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin,omitempty"`
	ExpectedOutput string  `json:"expected_output,omitempty"`
	CPUTimeLimit   float64 `json:"cpu_time_limit,omitempty"` // seconds
	MemoryLimit    int     `json:"memory_limit,omitempty"`   // KB
}

// SubmissionResult is the judge's view of one execution.
// Judge0 reports time as a string of seconds and leaves absent fields null.
type SubmissionResult struct {
	Token         string  `json:"token"`
	Status        Status  `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
	ExitCode      *int    `json:"exit_code"`
	ExitSignal    *int    `json:"exit_signal"`
	FinishedAt    *string `json:"finished_at"`
}

// Language describes one language supported by the judge.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Common Judge0 language ids, kept for the ops CLI and seeders.
const (
	LanguageC          = 50
	LanguageCPP        = 54
	LanguageJava       = 62
	LanguagePython     = 71
	LanguageJavaScript = 63
	LanguageTypeScript = 74
	LanguageCSharp     = 51
	LanguageGo         = 60
	LanguageRust       = 73
	LanguageRuby       = 72
	LanguagePHP        = 68
	LanguageBash       = 46
)
