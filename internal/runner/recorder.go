package runner

import (
	"context"
	"sync"
)

// Recorder is a Runner that never spawns processes. It records every command
// and answers with the scripted response registered for the command name, or
// an empty successful Result.
type Recorder struct {
	mu        sync.Mutex
	commands  []Command
	responses map[string]Response
}

// Response is a scripted answer for a Recorder.
type Response struct {
	Result *Result
	Err    error
	// Do runs before the response is returned, e.g. to create the files a
	// real generator would have produced.
	Do func(cmd Command) error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{responses: make(map[string]Response)}
}

// On registers the response for commands whose Name equals name.
func (r *Recorder) On(name string, resp Response) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.responses[name] = resp

	return r
}

// Run records cmd and returns the scripted response.
func (r *Recorder) Run(_ context.Context, cmd Command) (*Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	resp, ok := r.responses[cmd.Name]
	r.mu.Unlock()

	if !ok {
		return &Result{}, nil
	}

	if resp.Do != nil {
		if err := resp.Do(cmd); err != nil {
			return &Result{ExitCode: 1}, err
		}
	}

	res := resp.Result
	if res == nil {
		res = &Result{}
	}

	return res, resp.Err
}

// Commands returns a copy of every command run so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Command(nil), r.commands...)
}

// Count returns how many recorded commands had the given Name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, c := range r.commands {
		if c.Name == name {
			n++
		}
	}

	return n
}
