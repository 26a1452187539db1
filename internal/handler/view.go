package handler

import (
	"fmt"
	"io"
	"os"

	"github.com/larkerhq/larker/internal/twitter"
)

// View prints each record's text to the terminal.
type View struct {
	State
	out io.Writer
}

// NewView creates a handler that writes record texts to stdout.
func NewView(limit int) *View {
	return &View{State: State{Limit: limit}, out: os.Stdout}
}

func (v *View) Handle(rec twitter.Record) error {
	_, err := fmt.Fprintln(v.out, rec.Text)
	return err
}

func (v *View) OnFinish() {
	fmt.Fprintf(v.out, "Written %d tweets\n", v.Counter)
}
