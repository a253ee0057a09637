package execx

import (
	"context"
	"strings"
)

// Call records one invocation made through a Fake.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is a Runner for tests. Handler, when set, decides the result of each
// call; otherwise every call succeeds with no output.
type Fake struct {
	Calls   []Call
	Handler func(call Call) ([]byte, error)
}

func (f *Fake) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return f.record(Call{Name: name, Args: args})
}

func (f *Fake) Interactive(_ context.Context, name string, args ...string) error {
	_, err := f.record(Call{Name: name, Args: args, Interactive: true})
	return err
}

func (f *Fake) record(c Call) ([]byte, error) {
	f.Calls = append(f.Calls, c)
	if f.Handler == nil {
		return nil, nil
	}
	return f.Handler(c)
}
