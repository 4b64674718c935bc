package session

import "time"

// Tone classifies a status line for styling.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneOK      Tone = "ok"
	ToneWarn    Tone = "warn"
	ToneErr     Tone = "err"
)

// Status is the text shown in the editor status pill.
type Status struct {
	Tone Tone   `json:"tone"`
	Text string `json:"text"`
}

// StatusResetDelay is how long an ok status stays before reverting to
// "Ready.".
const StatusResetDelay = 1200 * time.Millisecond

var (
	statusLoading     = Status{ToneNeutral, "Loading…"}
	statusReady       = Status{ToneNeutral, "Ready."}
	statusAutosaving  = Status{ToneNeutral, "Autosaving…"}
	statusSaving      = Status{ToneNeutral, "Saving…"}
	statusSaved       = Status{ToneOK, "Saved."}
	statusSaveFailed  = Status{ToneErr, "Save failed."}
	statusLoadFailed  = Status{ToneErr, "Editor failed to load."}
	statusReloaded    = Status{ToneOK, "Saved version loaded."}
	statusNothing     = Status{ToneWarn, "Nothing saved yet."}
	statusReloadError = Status{ToneErr, "Load failed."}
)

// Snapshot is the observable view of a session.
type Snapshot struct {
	SessionID        string `json:"sessionId"`
	DocID            string `json:"docId"`
	Title            string `json:"title"`
	State            State  `json:"state"`
	Status           Status `json:"status"`
	WordCount        int    `json:"wordCount"`
	WordCountEnabled bool   `json:"wordCountEnabled"`
	UserStarted      bool   `json:"userStarted"`
}
