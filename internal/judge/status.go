package judge

// Judge0 status ids. Ids 1 and 2 mean the run is still queued or executing;
// everything at StatusAccepted and above is a terminal outcome.
const (
	StatusInQueue             = 1
	StatusProcessing          = 2
	StatusAccepted            = 3
	StatusWrongAnswer         = 4
	StatusTimeLimitExceeded   = 5
	StatusCompilationError    = 6
	StatusRuntimeErrorSIGSEGV = 7
	StatusRuntimeErrorSIGXFSZ = 8
	StatusRuntimeErrorSIGFPE  = 9
	StatusRuntimeErrorSIGABRT = 10
	StatusRuntimeErrorNZEC    = 11
	StatusRuntimeErrorOther   = 12
	StatusInternalError       = 13
	StatusExecFormatError     = 14
)

var statusDescriptions = map[int]string{
	StatusInQueue:             "In Queue",
	StatusProcessing:          "Processing",
	StatusAccepted:            "Accepted",
	StatusWrongAnswer:         "Wrong Answer",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusCompilationError:    "Compilation Error",
	StatusRuntimeErrorSIGSEGV: "Runtime Error (SIGSEGV)",
	StatusRuntimeErrorSIGXFSZ: "Runtime Error (SIGXFSZ)",
	StatusRuntimeErrorSIGFPE:  "Runtime Error (SIGFPE)",
	StatusRuntimeErrorSIGABRT: "Runtime Error (SIGABRT)",
	StatusRuntimeErrorNZEC:    "Runtime Error (NZEC)",
	StatusRuntimeErrorOther:   "Runtime Error",
	StatusInternalError:       "Internal Error",
	StatusExecFormatError:     "Exec Format Error",
}

// StatusDescription returns the canonical description for a status id.
func StatusDescription(id int) string {
	if desc, ok := statusDescriptions[id]; ok {
		return desc
	}
	return "Unknown"
}

// IsTerminalStatus reports whether the status id marks a finished run.
func IsTerminalStatus(id int) bool {
	return id >= StatusAccepted
}

// Status is the status object embedded in judge results.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return IsTerminalStatus(s.ID)
}
