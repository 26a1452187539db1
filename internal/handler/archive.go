package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/larkerhq/larker/internal/store"
	"github.com/larkerhq/larker/internal/twitter"
)

// Archive persists each record into the SQLite store.
type Archive struct {
	State
	ctx context.Context
	st  *store.Store
}

// NewArchive creates a handler that archives records to st.
func NewArchive(ctx context.Context, st *store.Store, limit int) *Archive {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Archive{State: State{Limit: limit}, ctx: ctx, st: st}
}

func (a *Archive) Handle(rec twitter.Record) error {
	return a.st.InsertRecord(a.ctx, rec, time.Now())
}

func (a *Archive) OnFinish() {
	fmt.Printf("Archived %d tweets\n", a.Counter)
}
