package backup

import (
	"fmt"

	"github.com/booknotes/booknotes/internal/domain"
)

// ImportProposal is a decoded backup waiting for the user to agree to
// replace the collection with it.
type ImportProposal struct {
	Cards    []domain.Flashcard
	Incoming int
	Current  int
	Prompt   string
}

// NewImportProposal describes replacing current cards with incoming.
func NewImportProposal(incoming []domain.Flashcard, current int) *ImportProposal {
	return &ImportProposal{
		Cards:    incoming,
		Incoming: len(incoming),
		Current:  current,
		Prompt: fmt.Sprintf("This will replace all %d existing note(s) with %d note(s) from the backup. Are you sure?",
			current, len(incoming)),
	}
}
