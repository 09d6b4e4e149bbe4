// Package service provides the user-facing operations of booknotes: adding
// and deleting cards, resolving covers, backups and preferences.
package service

import "sync/atomic"

// Confirmer decides whether a destructive action goes ahead.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Fixed confirmers for non-interactive callers.
var (
	AlwaysConfirm Confirmer = ConfirmerFunc(func(string) bool { return true })
	NeverConfirm  Confirmer = ConfirmerFunc(func(string) bool { return false })
)

// DeletePrompt is shown before a card is deleted.
const DeletePrompt = "Are you sure you want to delete this card?"

// oneShot is embedded in proposals that may be confirmed only once.
type oneShot struct {
	used atomic.Bool
}

func (o *oneShot) claim() bool {
	return o.used.CompareAndSwap(false, true)
}

// release hands the claim back after the confirmed action failed, so the
// same proposal can be confirmed again.
func (o *oneShot) release() {
	o.used.Store(false)
}
