package output

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/instaintelli/cli/pkg/client"
)

// ViewState is the one state a data view is showing.
type ViewState int

const (
	StateIdle ViewState = iota
	StateLoading
	StateError
	StateEmpty
	StateContent
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateContent:
		return "content"
	default:
		return "idle"
	}
}

// View renders a data-fetching command as exactly one of loading, error
// with a retry hint, empty, or content. Status lines go to Stderr.
type View struct {
	Title     string
	RetryHint string
	EmptyText string

	state ViewState
	err   string
}

// NewView creates a View. retryHint is the command that retries the load.
func NewView(title, retryHint, emptyText string) *View {
	return &View{Title: title, RetryHint: retryHint, EmptyText: emptyText}
}

// State returns the current state.
func (v *View) State() ViewState {
	return v.state
}

// ErrorText is the banner shown in the error state, empty otherwise.
func (v *View) ErrorText() string {
	if v.state != StateError {
		return ""
	}
	return v.err
}

func (v *View) loading() {
	v.state, v.err = StateLoading, ""
	if GetOutputFormat() != FormatJSON {
		color.New(color.Faint).Fprintf(Stderr, "Loading %s...\n", v.Title)
	}
}

func (v *View) fail(err error) {
	v.state, v.err = StateError, client.FormatError(err)
	PrintError("%s", v.err)
	if v.RetryHint != "" {
		fmt.Fprintf(Stderr, "Retry with: %s\n", v.RetryHint)
	}
}

func (v *View) empty() {
	v.state, v.err = StateEmpty, ""
	if GetOutputFormat() == FormatJSON {
		fmt.Fprintln(Stdout, "[]")
		return
	}
	PrintInfo("%s", v.EmptyText)
}

// ReportedError wraps an error a View already showed to the user, so the
// command layer only has to set the exit code.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// Load runs fetch and renders the result. isEmpty may be nil.
func Load[T any](v *View, fetch func() (T, error), isEmpty func(T) bool, render func(T) error) error {
	v.loading()

	data, err := fetch()
	if err != nil {
		v.fail(err)
		return &ReportedError{Err: err}
	}
	if isEmpty != nil && isEmpty(data) {
		v.empty()
		return nil
	}

	v.state, v.err = StateContent, ""
	return render(data)
}
